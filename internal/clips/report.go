package clips

import (
	"encoding/json"
	"math"
	"os"
	"time"

	"github.com/clipforge/clipforge-agent/internal/fetch"
)

// ReportFilename is the summary file written into the output directory.
const ReportFilename = "report.json"

// BuildReport derives the processing summary from the final artifact list.
// It is pure arithmetic; serialization is left to WriteReport. An empty
// artifact list yields ErrEmptyResult.
func BuildReport(artifacts []Artifact, sourceDuration float64, meta fetch.Metadata, now time.Time) (*Report, error) {
	if len(artifacts) == 0 {
		return nil, ErrEmptyResult
	}

	var totalDuration, totalSizeMB float64
	shortest := artifacts[0].Window.Duration
	longest := artifacts[0].Window.Duration

	details := make([]ClipDetail, len(artifacts))
	for i, a := range artifacts {
		d := a.Window.Duration
		totalDuration += d
		totalSizeMB += a.SizeMB()
		if d < shortest {
			shortest = d
		}
		if d > longest {
			longest = d
		}
		details[i] = ClipDetail{
			Path:       a.Path,
			ClipNumber: a.Window.Index,
			StartTime:  a.Window.Start,
			EndTime:    a.Window.End,
			Duration:   d,
			Filename:   a.Filename,
			SizeMB:     a.SizeMB(),
		}
	}

	coverage := 0.0
	if sourceDuration > 0 {
		coverage = totalDuration / sourceDuration * 100
	}

	n := float64(len(artifacts))
	return &Report{
		Summary: ReportSummary{
			TotalClipsCreated:   len(artifacts),
			TotalDuration:       totalDuration,
			SourceDuration:      sourceDuration,
			CoveragePercentage:  math.Round(coverage*100) / 100,
			VideoTitle:          meta.Title,
			VideoUploader:       meta.Uploader,
			ProcessingTimestamp: now.Format("2006-01-02 15:04:05"),
		},
		Clips: details,
		Statistics: ReportStats{
			AverageClipDuration: totalDuration / n,
			ShortestClip:        shortest,
			LongestClip:         longest,
			TotalOutputSizeMB:   totalSizeMB,
			AverageFileSizeMB:   totalSizeMB / n,
		},
	}, nil
}

// WriteReport serializes the report as indented JSON at path.
func WriteReport(path string, report *Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
