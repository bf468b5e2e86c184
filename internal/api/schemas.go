package api

import (
	"time"

	"github.com/clipforge/clipforge-agent/internal/clips"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
	Busy    bool   `json:"busy"`
}

type GenerateRequest struct {
	URL       string `json:"url"`
	OutputDir string `json:"output_dir,omitempty"`
}

type GenerateResponse struct {
	RunID string `json:"run_id"`
}

type RunResponse struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	Title        string `json:"title,omitempty"`
	Status       string `json:"status"`
	OutputDir    string `json:"output_dir"`
	ClipsPlanned int    `json:"clips_planned"`
	ClipsCreated int    `json:"clips_created"`
	Error        string `json:"error,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

type RunsResponse struct {
	Runs []RunResponse `json:"runs"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func RunToResponse(r *clips.Run) RunResponse {
	return RunResponse{
		ID:           r.ID,
		URL:          r.URL,
		Title:        r.Title,
		Status:       r.Status,
		OutputDir:    r.OutputDir,
		ClipsPlanned: r.ClipsPlanned,
		ClipsCreated: r.ClipsCreated,
		Error:        r.Error,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    r.UpdatedAt.Format(time.RFC3339),
	}
}
