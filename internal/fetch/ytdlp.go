package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// YTDLP downloads videos via the yt-dlp command line tool.
type YTDLP struct {
	binary      string
	downloadDir string
	logger      *slog.Logger
}

// infoJSON is the subset of yt-dlp's --print-json output the agent uses.
type infoJSON struct {
	Filename    string  `json:"_filename"`
	Title       string  `json:"title"`
	Duration    float64 `json:"duration"`
	Uploader    string  `json:"uploader"`
	Description string  `json:"description"`
	ViewCount   int64   `json:"view_count"`
	UploadDate  string  `json:"upload_date"`
}

// NewYTDLP resolves the downloader binary and prepares the download
// directory. An empty binary path means auto-detect on PATH.
func NewYTDLP(binary, downloadDir string, logger *slog.Logger) (*YTDLP, error) {
	resolved, err := resolveDownloader(binary)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(downloadDir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create download dir: %w", err)
	}

	logger.Info("fetcher initialised", "binary", resolved, "download_dir", downloadDir)
	return &YTDLP{binary: resolved, downloadDir: downloadDir, logger: logger}, nil
}

// Fetch downloads the video and writes a metadata JSON file next to it.
func (y *YTDLP) Fetch(ctx context.Context, url string) (*Result, error) {
	y.logger.Info("downloading video", "url", url)

	cmd := exec.CommandContext(ctx, y.binary,
		"--no-playlist",
		"-f", "best[ext=mp4]",
		"-o", filepath.Join(y.downloadDir, "%(id)s.%(ext)s"),
		"--no-progress",
		"--print-json",
		url,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		tail := strings.TrimSpace(stderr.String())
		if len(tail) > 512 {
			tail = tail[len(tail)-512:]
		}
		y.logger.Error("download failed", "url", url, "stderr_tail", tail)
		return nil, &Error{URL: url, Err: fmt.Errorf("%w: %s", err, tail)}
	}

	var info infoJSON
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		return nil, &Error{URL: url, Err: fmt.Errorf("cannot parse downloader output: %w", err)}
	}
	if info.Filename == "" {
		return nil, &Error{URL: url, Err: fmt.Errorf("downloader output missing filename")}
	}
	if _, err := os.Stat(info.Filename); err != nil {
		return nil, &Error{URL: url, Err: fmt.Errorf("downloaded file missing: %w", err)}
	}

	result := &Result{
		Path:  info.Filename,
		Title: info.Title,
		Meta: Metadata{
			Title:       info.Title,
			Duration:    info.Duration,
			Uploader:    info.Uploader,
			Description: info.Description,
			ViewCount:   info.ViewCount,
			UploadDate:  info.UploadDate,
		},
	}

	if err := y.writeMetadata(result); err != nil {
		y.logger.Warn("failed to write metadata file", "error", err)
	}

	y.logger.Info("video downloaded",
		"path", filepath.Base(result.Path),
		"title", result.Title,
		"duration_s", result.Meta.Duration,
	)
	return result, nil
}

// writeMetadata saves per-download metadata next to the media file.
func (y *YTDLP) writeMetadata(r *Result) error {
	data, err := json.MarshalIndent(r.Meta, "", "  ")
	if err != nil {
		return err
	}
	path := metadataPath(r.Path)
	return os.WriteFile(path, data, 0644)
}

func metadataPath(mediaPath string) string {
	ext := filepath.Ext(mediaPath)
	return strings.TrimSuffix(mediaPath, ext) + "_metadata.json"
}

func resolveDownloader(preferred string) (string, error) {
	if preferred != "" {
		if p, err := exec.LookPath(preferred); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("configured downloader %q not found", preferred)
	}
	for _, name := range []string{"yt-dlp", "youtube-dl"} {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no downloader binary found on PATH (tried yt-dlp, youtube-dl)")
}
