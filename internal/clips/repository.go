package clips

import (
	"context"
	"database/sql"
	"time"
)

// Repository persists run records, serialized reports, and agent config.
type Repository interface {
	CreateRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	UpdateRunStatus(ctx context.Context, id, status, errorMsg string) error
	UpdateRunTitle(ctx context.Context, id, title string) error
	UpdateRunCounts(ctx context.Context, id string, planned, created int) error

	SaveReport(ctx context.Context, runID string, reportJSON string) error
	GetReport(ctx context.Context, runID string) (string, error)

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateRun(ctx context.Context, run *Run) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO runs (id, url, title, status, output_dir, clips_planned, clips_created, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.URL, run.Title, run.Status, run.OutputDir, run.ClipsPlanned, run.ClipsCreated, run.Error,
		run.CreatedAt.Format(time.RFC3339), run.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetRun(ctx context.Context, id string) (*Run, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, url, title, status, output_dir, clips_planned, clips_created, error, created_at, updated_at
		FROM runs WHERE id = ?
	`, id)
	return scanRun(row)
}

func (r *SQLiteRepository) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, url, title, status, output_dir, clips_planned, clips_created, error, created_at, updated_at
		FROM runs ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRunRows(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *SQLiteRepository) UpdateRunStatus(ctx context.Context, id, status, errorMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, error = ?, updated_at = ? WHERE id = ?
	`, status, errorMsg, time.Now().Format(time.RFC3339), id)
	return err
}

func (r *SQLiteRepository) UpdateRunTitle(ctx context.Context, id, title string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE runs SET title = ?, updated_at = ? WHERE id = ?
	`, title, time.Now().Format(time.RFC3339), id)
	return err
}

func (r *SQLiteRepository) UpdateRunCounts(ctx context.Context, id string, planned, created int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE runs SET clips_planned = ?, clips_created = ?, updated_at = ? WHERE id = ?
	`, planned, created, time.Now().Format(time.RFC3339), id)
	return err
}

func (r *SQLiteRepository) SaveReport(ctx context.Context, runID, reportJSON string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reports (run_id, report_json, created_at) VALUES (?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET report_json = excluded.report_json
	`, runID, reportJSON, time.Now().Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetReport(ctx context.Context, runID string) (string, error) {
	var reportJSON string
	err := r.db.QueryRowContext(ctx, `SELECT report_json FROM reports WHERE run_id = ?`, runID).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return reportJSON, nil
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row *sql.Row) (*Run, error) {
	run, err := scanRunFrom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

func scanRunRows(rows *sql.Rows) (*Run, error) {
	return scanRunFrom(rows)
}

func scanRunFrom(s rowScanner) (*Run, error) {
	var run Run
	var createdAt, updatedAt string

	err := s.Scan(&run.ID, &run.URL, &run.Title, &run.Status, &run.OutputDir,
		&run.ClipsPlanned, &run.ClipsCreated, &run.Error, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	run.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &run, nil
}
