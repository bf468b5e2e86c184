package clips

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/clipforge/clipforge-agent/internal/segment"
	"github.com/clipforge/clipforge-agent/internal/transcode"
)

// Encoder produces one validated clip artifact per window. The actual
// re-encode is delegated to the Transcoder; the encoder owns validation of
// the result.
type Encoder struct {
	transcoder   transcode.Transcoder
	options      transcode.Options
	minClipBytes int64
	logger       *slog.Logger
}

func NewEncoder(t transcode.Transcoder, opts transcode.Options, minClipBytes int64, logger *slog.Logger) *Encoder {
	return &Encoder{
		transcoder:   t,
		options:      opts,
		minClipBytes: minClipBytes,
		logger:       logger,
	}
}

// Encode extracts one window into outputPath and validates the result. Any
// transcode failure, timeout, missing output, or undersized output is
// reported as an EncodeError; the artifact is returned only when all checks
// pass.
func (e *Encoder) Encode(ctx context.Context, sourcePath string, w segment.Window, outputPath string) (*Artifact, error) {
	result, err := e.transcoder.Transcode(ctx, transcode.Request{
		InputPath:  sourcePath,
		OutputPath: outputPath,
		Start:      w.Start,
		Duration:   w.Duration,
		Options:    e.options,
	})
	if err != nil {
		return nil, &EncodeError{Window: w, Reason: "transcode did not run", Err: err}
	}

	if !result.IsSuccess() {
		reason := "transcode failed"
		if result.TimedOut {
			reason = "transcode timed out"
		}
		return nil, &EncodeError{Window: w, Reason: reason}
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return nil, &EncodeError{Window: w, Reason: "output file missing", Err: err}
	}

	// A healthy clip of this length is well past the threshold; anything
	// under it is a truncated or corrupt encode.
	if info.Size() <= e.minClipBytes {
		return nil, &EncodeError{Window: w, Reason: "output file too small"}
	}

	e.logger.Debug("clip validated",
		"clip", w.Index,
		"duration_s", w.Duration,
		"size_bytes", info.Size(),
	)

	return &Artifact{
		Window:    w,
		Path:      outputPath,
		Filename:  filepath.Base(outputPath),
		SizeBytes: info.Size(),
	}, nil
}
