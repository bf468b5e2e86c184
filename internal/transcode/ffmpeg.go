package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const maxStderrBytes = 8 * 1024 // tail of stderr kept for diagnostics

// FFmpeg runs the real ffmpeg and ffprobe binaries as subprocesses.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
	logger      *slog.Logger
}

// NewFFmpeg resolves the ffmpeg and ffprobe binaries and returns a runner.
// Empty paths mean auto-detect on PATH. timeout bounds each Transcode call.
func NewFFmpeg(ffmpegPath, ffprobePath string, timeout time.Duration, logger *slog.Logger) (*FFmpeg, error) {
	fp, err := resolveBinary(ffmpegPath, "ffmpeg")
	if err != nil {
		return nil, err
	}
	pp, err := resolveBinary(ffprobePath, "ffprobe")
	if err != nil {
		return nil, err
	}

	logger.Info("transcoder initialised", "ffmpeg", fp, "ffprobe", pp, "clip_timeout", timeout)
	return &FFmpeg{ffmpegPath: fp, ffprobePath: pp, timeout: timeout, logger: logger}, nil
}

func (f *FFmpeg) Transcode(ctx context.Context, req Request) (Result, error) {
	start := time.Now()

	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0755); err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("cannot create output dir: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	args := buildArgs(req)
	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)

	var stderrBuf bytes.Buffer
	cmd.Stderr = io.Writer(&limitedWriter{w: &stderrBuf, limit: maxStderrBytes})
	cmd.Stdout = io.Discard

	f.logger.Debug("executing ffmpeg",
		"input", filepath.Base(req.InputPath),
		"output", filepath.Base(req.OutputPath),
		"start", req.Start,
		"duration", req.Duration,
	)

	err := cmd.Run()
	elapsed := time.Since(start)

	result := Result{
		StderrTail: stderrBuf.String(),
		Elapsed:    elapsed,
		TimedOut:   errors.Is(ctx.Err(), context.DeadlineExceeded),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
	}

	if result.ExitCode != 0 {
		f.logger.Warn("ffmpeg failed",
			"exit_code", result.ExitCode,
			"timed_out", result.TimedOut,
			"duration_ms", elapsed.Milliseconds(),
			"stderr_tail", truncate(result.StderrTail, 512),
		)
	} else {
		f.logger.Info("ffmpeg succeeded",
			"output", filepath.Base(req.OutputPath),
			"duration_ms", elapsed.Milliseconds(),
		)
	}

	return result, nil
}

// Probe reads the container duration via ffprobe.
func (f *FFmpeg) Probe(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, f.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s: %w", filepath.Base(path), err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse ffprobe duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	return duration, nil
}

func resolveBinary(preferred, name string) (string, error) {
	if preferred != "" {
		if p, err := exec.LookPath(preferred); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("configured %s %q not found", name, preferred)
	}
	p, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("no %s binary found on PATH", name)
	}
	return p, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen:]
}

// limitedWriter keeps only the last `limit` bytes written.
type limitedWriter struct {
	w     *bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	lw.w.Write(p)
	if lw.w.Len() > lw.limit {
		b := lw.w.Bytes()
		lw.w.Reset()
		lw.w.Write(b[len(b)-lw.limit:])
	}
	return n, nil
}
