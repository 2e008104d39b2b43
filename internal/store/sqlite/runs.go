package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/listenupapp/catalog-scraper/internal/id"
	"github.com/listenupapp/catalog-scraper/internal/store"
)

// RunStatus is the lifecycle state of a scrape run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// Run records one CLI or API scrape invocation.
type Run struct {
	ID         string
	Command    string
	Target     string
	Status     RunStatus
	Records    int
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// StartRun inserts a running scrape run and returns it.
func (s *Store) StartRun(ctx context.Context, command, target string) (*Run, error) {
	runID, err := id.NewRunID()
	if err != nil {
		return nil, err
	}

	run := &Run{
		ID:        runID,
		Command:   command,
		Target:    target,
		Status:    RunStatusRunning,
		StartedAt: s.now(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scrape_runs (id, command, target, status, started_at)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Command, run.Target, string(run.Status), formatTime(run.StartedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	s.logger.Debug("scrape run started", "run_id", run.ID, "command", command, "target", target)
	return run, nil
}

// FinishRun marks a run as succeeded, or failed when runErr is non-nil.
func (s *Store) FinishRun(ctx context.Context, runID string, records int, runErr error) error {
	status := RunStatusSucceeded
	var errText sql.NullString
	if runErr != nil {
		status = RunStatusFailed
		errText = sql.NullString{String: runErr.Error(), Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE scrape_runs
		SET status = ?, records = ?, error = ?, finished_at = ?
		WHERE id = ?`,
		string(status), records, errText, formatTime(s.now()), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// GetRun retrieves a scrape run by id.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	var (
		run        Run
		status     string
		errText    sql.NullString
		startedAt  string
		finishedAt sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, command, target, status, records, error, started_at, finished_at
		FROM scrape_runs WHERE id = ?`, runID,
	).Scan(&run.ID, &run.Command, &run.Target, &status, &run.Records, &errText, &startedAt, &finishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	run.Status = RunStatus(status)
	run.Error = errText.String
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = parseNullableTime(finishedAt); err != nil {
		return nil, fmt.Errorf("parse finished_at: %w", err)
	}
	return &run, nil
}
