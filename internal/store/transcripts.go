package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ytshelf/internal/models"
)

// ErrTranscriptNotFound indicates no transcript exists for the video and language.
var ErrTranscriptNotFound = errors.New("transcript not found")

// ReplacePolicy decides whether an incoming transcript body may overwrite the
// stored one.
type ReplacePolicy func(existing, incoming string) bool

// GetTranscript returns the stored transcript of a video in one language.
func (s *Store) GetTranscript(ctx context.Context, videoID, language string) (models.Transcript, error) {
	var t models.Transcript
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT video_id, language, transcript, last_fetched_at
		FROM transcripts
		WHERE video_id = ? AND language = ?`), videoID, language).
		Scan(&t.VideoID, &t.Language, &t.Text, &t.LastFetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transcript{}, ErrTranscriptNotFound
	}
	if err != nil {
		return models.Transcript{}, fmt.Errorf("get transcript: %w", err)
	}
	t.LastFetchedAt = t.LastFetchedAt.UTC()
	return t, nil
}

// ListTranscripts returns every stored transcript of a video.
func (s *Store) ListTranscripts(ctx context.Context, videoID string) ([]models.Transcript, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT video_id, language, transcript, last_fetched_at
		FROM transcripts
		WHERE video_id = ?
		ORDER BY language`), videoID)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	defer rows.Close()

	var transcripts []models.Transcript
	for rows.Next() {
		var t models.Transcript
		if err := rows.Scan(&t.VideoID, &t.Language, &t.Text, &t.LastFetchedAt); err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		t.LastFetchedAt = t.LastFetchedAt.UTC()
		transcripts = append(transcripts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcripts: %w", err)
	}
	return transcripts, nil
}

// UpsertTranscript stores t, overwriting an existing transcript for the same
// video and language only when allow approves. A nil allow always
// overwrites. It reports whether t was written.
func (s *Store) UpsertTranscript(ctx context.Context, t models.Transcript, allow ReplacePolicy) (bool, error) {
	if t.VideoID == "" || t.Language == "" {
		return false, errors.New("transcript video id and language are required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var existing string
	err = tx.QueryRowContext(ctx, s.q(`
		SELECT transcript FROM transcripts
		WHERE video_id = ? AND language = ?`), t.VideoID, t.Language).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return false, fmt.Errorf("read existing transcript: %w", err)
	case allow != nil && !allow(existing, t.Text):
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO transcripts (video_id, language, transcript, last_fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (video_id, language) DO UPDATE SET
			transcript = excluded.transcript,
			last_fetched_at = excluded.last_fetched_at`),
		t.VideoID, t.Language, t.Text, t.LastFetchedAt.UTC()); err != nil {
		return false, fmt.Errorf("upsert transcript: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transcript: %w", err)
	}
	tx = nil
	return true, nil
}
