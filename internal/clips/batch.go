package clips

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/clipforge/clipforge-agent/internal/progress"
	"github.com/clipforge/clipforge-agent/internal/segment"
)

// Encode progress occupies the 40-90% band of the overall run.
const (
	batchProgressBase = 40
	batchProgressSpan = 50
)

const fallbackTitle = "video"

// BatchRunner executes a plan strictly in order, one encode at a time.
// Sequential execution is deliberate: concurrent encodes contend for CPU and
// IO and make progress accounting ambiguous.
type BatchRunner struct {
	encoder *Encoder
	logger  *slog.Logger
}

func NewBatchRunner(encoder *Encoder, logger *slog.Logger) *BatchRunner {
	return &BatchRunner{encoder: encoder, logger: logger}
}

// Run encodes every window in the plan and returns the artifacts that
// succeeded, in plan order. A failed window is logged and skipped; it never
// aborts the batch. The returned slice may be empty.
func (b *BatchRunner) Run(ctx context.Context, sourcePath string, plan []segment.Window, outputDir, title string, sink progress.Sink) []Artifact {
	cleanTitle := SanitizeName(title, maxTitleRunes)
	if cleanTitle == "" {
		cleanTitle = fallbackTitle
	}

	total := len(plan)
	artifacts := make([]Artifact, 0, total)

	for i, w := range plan {
		if ctx.Err() != nil {
			b.logger.Warn("batch interrupted", "completed", len(artifacts), "planned", total)
			break
		}

		if sink != nil {
			sink.Publish(progress.Snapshot{
				Phase:       progress.PhaseProcessing,
				Message:     fmt.Sprintf("Generating clip %d/%d...", i+1, total),
				Percent:     batchProgressBase + i*batchProgressSpan/total,
				TotalClips:  total,
				CurrentClip: i + 1,
			})
		}

		filename := fmt.Sprintf("%s_clip_%03d_%.0fs.mp4", cleanTitle, w.Index, w.Start)
		outputPath := filepath.Join(outputDir, filename)

		b.logger.Info("creating clip",
			"clip", w.Index,
			"total", total,
			"start_s", w.Start,
			"end_s", w.End,
		)

		artifact, err := b.encoder.Encode(ctx, sourcePath, w, outputPath)
		if err != nil {
			b.logger.Error("clip failed", "clip", w.Index, "error", err)
			continue
		}

		artifacts = append(artifacts, *artifact)
		b.logger.Info("clip created", "filename", artifact.Filename, "size_mb", fmt.Sprintf("%.1f", artifact.SizeMB()))
	}

	b.logger.Info("batch finished", "created", len(artifacts), "planned", total)
	return artifacts
}
