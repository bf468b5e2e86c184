// Package clips implements the clip generation pipeline: per-window
// encoding, sequential batch execution, report building, and run records.
package clips

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/clipforge/clipforge-agent/internal/segment"
)

const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run is one processing request from URL to report.
type Run struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Title        string    `json:"title,omitempty"`
	Status       string    `json:"status"`
	OutputDir    string    `json:"output_dir"`
	ClipsPlanned int       `json:"clips_planned"`
	ClipsCreated int       `json:"clips_created"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Artifact is a successfully produced and validated clip file. It is created
// only after encode validation passes and is immutable afterwards.
type Artifact struct {
	Window    segment.Window
	Path      string
	Filename  string
	SizeBytes int64
}

// SizeMB returns the artifact size in megabytes.
func (a Artifact) SizeMB() float64 {
	return float64(a.SizeBytes) / (1024 * 1024)
}

// Report is the JSON summary produced after a run. Field names mirror the
// report.json consumed by downstream tooling.
type Report struct {
	Summary    ReportSummary `json:"processing_summary"`
	Clips      []ClipDetail  `json:"clip_details"`
	Statistics ReportStats   `json:"statistics"`
}

type ReportSummary struct {
	TotalClipsCreated    int     `json:"total_clips_created"`
	TotalDuration        float64 `json:"total_duration_generated"`
	SourceDuration       float64 `json:"original_video_duration"`
	CoveragePercentage   float64 `json:"video_coverage_percentage"`
	VideoTitle           string  `json:"video_title"`
	VideoUploader        string  `json:"video_uploader"`
	ProcessingTimestamp  string  `json:"processing_timestamp"`
}

type ClipDetail struct {
	Path       string  `json:"path"`
	ClipNumber int     `json:"clip_number"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	Duration   float64 `json:"duration"`
	Filename   string  `json:"filename"`
	SizeMB     float64 `json:"size_mb"`
}

type ReportStats struct {
	AverageClipDuration float64 `json:"average_clip_duration"`
	ShortestClip        float64 `json:"shortest_clip"`
	LongestClip         float64 `json:"longest_clip"`
	TotalOutputSizeMB   float64 `json:"total_output_size_mb"`
	AverageFileSizeMB   float64 `json:"average_file_size_mb"`
}

// NewID returns a random identifier in the canonical grouped-hex form.
func NewID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:])
}
