// Package fetch retrieves a remote video to local disk and reports its
// metadata. Retrieval is delegated to yt-dlp; the rest of the agent only
// sees the local file path, title, and metadata.
package fetch

import (
	"context"
	"fmt"
)

// Metadata is the source description saved alongside the download and
// echoed into the processing report.
type Metadata struct {
	Title       string  `json:"title"`
	Duration    float64 `json:"duration"`
	Uploader    string  `json:"uploader"`
	Description string  `json:"description"`
	ViewCount   int64   `json:"view_count"`
	UploadDate  string  `json:"upload_date"`
}

// Result is a completed download.
type Result struct {
	Path  string
	Title string
	Meta  Metadata
}

// Fetcher downloads a remote video.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Result, error)
}

// Error wraps any retrieval failure. A fetch error aborts the whole run.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch failed for %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
