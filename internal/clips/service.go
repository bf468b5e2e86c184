package clips

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/clipforge/clipforge-agent/internal/fetch"
	"github.com/clipforge/clipforge-agent/internal/progress"
	"github.com/clipforge/clipforge-agent/internal/segment"
	"github.com/clipforge/clipforge-agent/internal/transcode"
)

// ServiceConfig wires the collaborators a Service needs.
type ServiceConfig struct {
	Repo         Repository
	Fetcher      fetch.Fetcher
	Transcoder   transcode.Transcoder
	Tracker      *progress.Tracker
	Params       segment.Params
	Options      transcode.Options
	OutputDir    string
	MinClipBytes int64
	Logger       *slog.Logger
}

// Service orchestrates a full run: fetch, plan, batch encode, report.
// One run executes at a time; starting a second while the first is active
// fails with ErrRunInProgress.
type Service struct {
	repo       Repository
	fetcher    fetch.Fetcher
	transcoder transcode.Transcoder
	tracker    *progress.Tracker
	batch      *BatchRunner
	params     segment.Params
	outputDir  string
	logger     *slog.Logger
	busy       atomic.Bool
}

func NewService(cfg ServiceConfig) *Service {
	encoder := NewEncoder(cfg.Transcoder, cfg.Options, cfg.MinClipBytes, cfg.Logger)
	return &Service{
		repo:       cfg.Repo,
		fetcher:    cfg.Fetcher,
		transcoder: cfg.Transcoder,
		tracker:    cfg.Tracker,
		batch:      NewBatchRunner(encoder, cfg.Logger),
		params:     cfg.Params,
		outputDir:  cfg.OutputDir,
		logger:     cfg.Logger,
	}
}

// Busy reports whether a run is currently executing.
func (s *Service) Busy() bool {
	return s.busy.Load()
}

// Tracker exposes the progress snapshot holder for read-side consumers.
func (s *Service) Tracker() *progress.Tracker {
	return s.tracker
}

// StartRun registers a run and processes it in the background. ctx must
// outlive the request that triggered it; cancelling it stops the run after
// the current clip.
func (s *Service) StartRun(ctx context.Context, url, outputDir string) (*Run, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}

	run, err := s.createRun(ctx, url, outputDir)
	if err != nil {
		s.busy.Store(false)
		return nil, err
	}

	go func() {
		defer s.busy.Store(false)
		if _, err := s.process(ctx, run); err != nil && !errors.Is(err, ErrEmptyResult) {
			s.logger.Error("run failed", "run_id", run.ID, "error", err)
		}
	}()

	return run, nil
}

// Execute processes a run synchronously. Used by the one-shot CLI path.
func (s *Service) Execute(ctx context.Context, url, outputDir string) (*Report, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.busy.Store(false)

	run, err := s.createRun(ctx, url, outputDir)
	if err != nil {
		return nil, err
	}
	return s.process(ctx, run)
}

func (s *Service) createRun(ctx context.Context, url, outputDir string) (*Run, error) {
	if outputDir == "" {
		outputDir = s.outputDir
	}

	now := time.Now()
	run := &Run{
		ID:        NewID(),
		URL:       url,
		Status:    RunStatusPending,
		OutputDir: outputDir,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("cannot create run record: %w", err)
	}

	s.logger.Info("run created", "run_id", run.ID, "url", url)
	return run, nil
}

// process drives the run lifecycle. Progress percentages follow the fixed
// milestone bands: download 10-30, planning 35-40, encode 40-90, report 90,
// complete 100.
func (s *Service) process(ctx context.Context, run *Run) (*Report, error) {
	log := s.logger.With("run_id", run.ID)

	s.tracker.Reset()
	s.tracker.Set(progress.PhaseDownloading, "Starting download...", 0, 0, 0)
	s.repo.UpdateRunStatus(ctx, run.ID, RunStatusRunning, "")

	s.tracker.Set(progress.PhaseDownloading, "Downloading video...", 10, 0, 0)
	result, err := s.fetcher.Fetch(ctx, run.URL)
	if err != nil {
		return nil, s.fail(ctx, run, log, err)
	}
	s.tracker.Set(progress.PhaseDownloading, "Download complete!", 30, 0, 0)
	s.repo.UpdateRunTitle(ctx, run.ID, result.Title)

	duration := result.Meta.Duration
	if duration <= 0 {
		// Metadata can omit duration; fall back to probing the file.
		duration, err = s.transcoder.Probe(ctx, result.Path)
		if err != nil {
			return nil, s.fail(ctx, run, log, fmt.Errorf("cannot determine source duration: %w", err))
		}
	}

	s.tracker.Set(progress.PhaseProcessing, "Calculating clip segments...", 35, 0, 0)
	plan, err := segment.Plan(duration, s.params)
	if err != nil {
		return nil, s.fail(ctx, run, log, err)
	}

	if err := os.MkdirAll(run.OutputDir, 0755); err != nil {
		return nil, s.fail(ctx, run, log, fmt.Errorf("cannot create output dir: %w", err))
	}

	expected := len(plan)
	s.repo.UpdateRunCounts(ctx, run.ID, expected, 0)
	s.tracker.Set(progress.PhaseProcessing, fmt.Sprintf("Generating %d shorts...", expected), 40, expected, 0)
	log.Info("plan computed", "windows", expected, "source_duration_s", duration)

	artifacts := s.batch.Run(ctx, result.Path, plan, run.OutputDir, result.Title, s.tracker)

	s.tracker.Set(progress.PhaseProcessing, "Creating final report...", 90, expected, len(artifacts))
	s.repo.UpdateRunCounts(ctx, run.ID, expected, len(artifacts))

	report, err := BuildReport(artifacts, duration, result.Meta, time.Now())
	if errors.Is(err, ErrEmptyResult) {
		// Zero artifacts is still a completed run; the report is simply
		// absent and the caller decides how to surface it.
		log.Warn("run produced no clips", "planned", expected)
		s.repo.UpdateRunStatus(ctx, run.ID, RunStatusCompleted, "")
		s.tracker.Set(progress.PhaseComplete, "No clips were created", 100, expected, 0)
		return nil, ErrEmptyResult
	}
	if err != nil {
		return nil, s.fail(ctx, run, log, err)
	}

	if err := s.persistReport(ctx, run, report); err != nil {
		return nil, s.fail(ctx, run, log, err)
	}

	s.repo.UpdateRunStatus(ctx, run.ID, RunStatusCompleted, "")
	s.tracker.Set(progress.PhaseComplete,
		fmt.Sprintf("Successfully generated %d shorts!", len(artifacts)),
		100, len(artifacts), len(artifacts))

	log.Info("run completed", "clips_created", len(artifacts), "clips_planned", expected)
	return report, nil
}

func (s *Service) persistReport(ctx context.Context, run *Run, report *Report) error {
	reportPath := filepath.Join(run.OutputDir, ReportFilename)
	if err := WriteReport(reportPath, report); err != nil {
		return fmt.Errorf("cannot write report: %w", err)
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("cannot serialize report: %w", err)
	}
	if err := s.repo.SaveReport(ctx, run.ID, string(data)); err != nil {
		return fmt.Errorf("cannot store report: %w", err)
	}
	return nil
}

func (s *Service) fail(ctx context.Context, run *Run, log *slog.Logger, err error) error {
	log.Error("run failed", "error", err)
	s.repo.UpdateRunStatus(ctx, run.ID, RunStatusFailed, err.Error())
	s.tracker.Fail(err.Error())
	return err
}
