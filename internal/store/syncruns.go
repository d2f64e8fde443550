package store

import (
	"context"
	"database/sql"
	"fmt"

	"ytshelf/internal/models"
)

// StartSyncRun records the beginning of a sync pass.
func (s *Store) StartSyncRun(ctx context.Context, run models.SyncRun) error {
	status := run.Status
	if status == "" {
		status = models.SyncRunStarted
	}
	if _, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO sync_runs (run_id, playlist_id, started_at, status)
		VALUES (?, ?, ?, ?)`), run.ID, run.PlaylistID, run.StartedAt.UTC(), string(status)); err != nil {
		return fmt.Errorf("insert sync run: %w", err)
	}
	return nil
}

// FinishSyncRun stores the outcome and counters of a sync pass.
func (s *Store) FinishSyncRun(ctx context.Context, run models.SyncRun) error {
	if _, err := s.db.ExecContext(ctx, s.q(`
		UPDATE sync_runs
		SET finished_at = ?, status = ?, added = ?, removed = ?,
			scraped = ?, skipped = ?, failed = ?, error_message = ?
		WHERE run_id = ?`),
		nullTime(run.FinishedAt), string(run.Status), run.Added, run.Removed,
		run.Scraped, run.Skipped, run.Failed, nullIfEmpty(run.Error), run.ID); err != nil {
		return fmt.Errorf("finish sync run: %w", err)
	}
	return nil
}

// ListSyncRuns returns the most recent sync runs of a playlist, newest first.
func (s *Store) ListSyncRuns(ctx context.Context, playlistID string, limit int) ([]models.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT run_id, playlist_id, started_at, finished_at, status,
			added, removed, scraped, skipped, failed, error_message
		FROM sync_runs
		WHERE playlist_id = ?
		ORDER BY started_at DESC
		LIMIT ?`), playlistID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	defer rows.Close()

	var runs []models.SyncRun
	for rows.Next() {
		var (
			run        models.SyncRun
			status     string
			finishedAt sql.NullTime
			errText    sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.PlaylistID, &run.StartedAt, &finishedAt, &status,
			&run.Added, &run.Removed, &run.Scraped, &run.Skipped, &run.Failed, &errText); err != nil {
			return nil, fmt.Errorf("scan sync run: %w", err)
		}
		run.StartedAt = run.StartedAt.UTC()
		run.FinishedAt = timePtr(finishedAt)
		run.Status = models.SyncRunStatus(status)
		run.Error = errText.String
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sync runs: %w", err)
	}
	return runs, nil
}
