package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/clipforge/clipforge-agent/internal/clips"
	"github.com/clipforge/clipforge-agent/internal/fetch"
	"github.com/clipforge/clipforge-agent/internal/progress"
	"github.com/clipforge/clipforge-agent/internal/segment"
	"github.com/clipforge/clipforge-agent/internal/transcode"
)

const testToken = "test-token-12345678"

type fakeRepo struct {
	mu      sync.Mutex
	runs    map[string]*clips.Run
	reports map[string]string
	config  map[string]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		runs:    make(map[string]*clips.Run),
		reports: make(map[string]string),
		config:  map[string]string{"auth_token": testToken},
	}
}

func (f *fakeRepo) CreateRun(ctx context.Context, run *clips.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *run
	f.runs[run.ID] = &cp
	return nil
}

func (f *fakeRepo) GetRun(ctx context.Context, id string) (*clips.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[id]
	if !ok {
		return nil, nil
	}
	cp := *run
	return &cp, nil
}

func (f *fakeRepo) ListRuns(ctx context.Context, limit int) ([]*clips.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*clips.Run
	for _, r := range f.runs {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeRepo) UpdateRunStatus(ctx context.Context, id, status, errorMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.runs[id]; ok {
		r.Status = status
		r.Error = errorMsg
	}
	return nil
}

func (f *fakeRepo) UpdateRunTitle(ctx context.Context, id, title string) error {
	return nil
}

func (f *fakeRepo) UpdateRunCounts(ctx context.Context, id string, planned, created int) error {
	return nil
}

func (f *fakeRepo) SaveReport(ctx context.Context, runID, reportJSON string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports[runID] = reportJSON
	return nil
}

func (f *fakeRepo) GetReport(ctx context.Context, runID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reports[runID], nil
}

func (f *fakeRepo) GetConfig(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.config[key], nil
}

func (f *fakeRepo) SetConfig(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.config[key] = value
	return nil
}

// blockingFetcher parks until released so tests can hold a run in flight.
type blockingFetcher struct {
	release chan struct{}
}

func (b *blockingFetcher) Fetch(ctx context.Context, url string) (*fetch.Result, error) {
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return nil, context.Canceled
}

type noopTranscoder struct{}

func (noopTranscoder) Transcode(ctx context.Context, req transcode.Request) (transcode.Result, error) {
	return transcode.Result{}, nil
}

func (noopTranscoder) Probe(ctx context.Context, path string) (float64, error) {
	return 0, nil
}

func testServerConfig(t *testing.T, repo clips.Repository, fetcher fetch.Fetcher) ServerConfig {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := clips.NewService(clips.ServiceConfig{
		Repo:         repo,
		Fetcher:      fetcher,
		Transcoder:   noopTranscoder{},
		Tracker:      progress.NewTracker(),
		Params:       segment.Params{TargetLength: 30, Overlap: 5, MinLength: 25, MaxWindows: 100},
		Options:      transcode.DefaultOptions(),
		OutputDir:    t.TempDir(),
		MinClipBytes: 1024,
		Logger:       logger,
	})

	return ServerConfig{
		Port:       0,
		Service:    svc,
		Repository: repo,
		Logger:     logger,
		StartTime:  time.Now().Add(-10 * time.Second),
		Version:    "0.1.0",
		RunContext: context.Background(),
	}
}

func authedRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer "+testToken)
	return req
}

func decodeJSONBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}

	return body
}

func TestHealthHandler_NoAuthRequired(t *testing.T) {
	router := NewRouter(testServerConfig(t, newFakeRepo(), &blockingFetcher{release: make(chan struct{})}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}

	body := decodeJSONBody(t, rr)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["busy"] != false {
		t.Errorf("busy = %v, want false", body["busy"])
	}
}

func TestProgressHandler_InitialIdle(t *testing.T) {
	router := NewRouter(testServerConfig(t, newFakeRepo(), &blockingFetcher{release: make(chan struct{})}))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/progress", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}

	body := decodeJSONBody(t, rr)
	if body["status"] != string(progress.PhaseIdle) {
		t.Errorf("status = %v, want idle", body["status"])
	}
}

func TestGenerateHandler_AcceptsAndRejectsConcurrent(t *testing.T) {
	release := make(chan struct{})
	fetcher := &blockingFetcher{release: release}
	defer close(release)

	router := NewRouter(testServerConfig(t, newFakeRepo(), fetcher))

	payload := bytes.NewBufferString(`{"url":"https://example.com/watch?v=abc"}`)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodPost, "/shorts", payload))

	if rr.Code != http.StatusAccepted {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusAccepted)
	}
	body := decodeJSONBody(t, rr)
	if body["run_id"] == "" {
		t.Error("run_id missing from response")
	}

	// A second request while the first run is still fetching must conflict.
	payload2 := bytes.NewBufferString(`{"url":"https://example.com/watch?v=def"}`)
	rr2 := httptest.NewRecorder()
	router.ServeHTTP(rr2, authedRequest(http.MethodPost, "/shorts", payload2))

	if rr2.Code != http.StatusConflict {
		t.Fatalf("second request status = %d, want %d", rr2.Code, http.StatusConflict)
	}
	body2 := decodeJSONBody(t, rr2)
	if body2["code"] != "RUN_IN_PROGRESS" {
		t.Errorf("error code = %v, want RUN_IN_PROGRESS", body2["code"])
	}
}

func TestGenerateHandler_MissingURL(t *testing.T) {
	router := NewRouter(testServerConfig(t, newFakeRepo(), &blockingFetcher{release: make(chan struct{})}))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodPost, "/shorts", bytes.NewBufferString(`{}`)))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestGenerateHandler_InvalidBody(t *testing.T) {
	router := NewRouter(testServerConfig(t, newFakeRepo(), &blockingFetcher{release: make(chan struct{})}))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodPost, "/shorts", bytes.NewBufferString(`not json`)))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestListRunsHandler(t *testing.T) {
	repo := newFakeRepo()
	now := time.Now()
	repo.CreateRun(context.Background(), &clips.Run{
		ID: "r1", URL: "https://example.com/v", Status: clips.RunStatusCompleted,
		ClipsPlanned: 4, ClipsCreated: 4, CreatedAt: now, UpdatedAt: now,
	})

	router := NewRouter(testServerConfig(t, repo, &blockingFetcher{release: make(chan struct{})}))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/runs", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp RunsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(resp.Runs))
	}
	if resp.Runs[0].ID != "r1" || resp.Runs[0].ClipsCreated != 4 {
		t.Errorf("unexpected run: %+v", resp.Runs[0])
	}
}

func TestGetRunHandler_NotFound(t *testing.T) {
	router := NewRouter(testServerConfig(t, newFakeRepo(), &blockingFetcher{release: make(chan struct{})}))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/runs/nope", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestGetReportHandler(t *testing.T) {
	repo := newFakeRepo()
	now := time.Now()
	repo.CreateRun(context.Background(), &clips.Run{
		ID: "r1", URL: "u", Status: clips.RunStatusCompleted, CreatedAt: now, UpdatedAt: now,
	})
	repo.SaveReport(context.Background(), "r1", `{"processing_summary":{"total_clips_created":2}}`)

	router := NewRouter(testServerConfig(t, repo, &blockingFetcher{release: make(chan struct{})}))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/runs/r1/report", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}
	body := decodeJSONBody(t, rr)
	if _, ok := body["processing_summary"]; !ok {
		t.Error("report body not passed through")
	}
}

func TestGetReportHandler_NoReport(t *testing.T) {
	repo := newFakeRepo()
	now := time.Now()
	repo.CreateRun(context.Background(), &clips.Run{
		ID: "r1", URL: "u", Status: clips.RunStatusFailed, CreatedAt: now, UpdatedAt: now,
	})

	router := NewRouter(testServerConfig(t, repo, &blockingFetcher{release: make(chan struct{})}))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/runs/r1/report", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusNotFound)
	}
}
