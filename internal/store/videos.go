package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"ytshelf/internal/models"
)

// ErrVideoNotFound indicates no video has the requested id.
var ErrVideoNotFound = errors.New("video not found")

const videoColumns = `video_id, title, description, publish_date, duration_seconds, view_count,
		author, channel_id, thumbnail_url, video_url, last_fetched_at`

func scanVideo(row rowScanner) (models.Video, error) {
	var (
		v                                                    models.Video
		description, publishDate, author, channel, thumbnail sql.NullString
		duration, views                                      sql.NullInt64
		fetchedAt                                            sql.NullTime
	)
	if err := row.Scan(&v.ID, &v.Title, &description, &publishDate, &duration, &views,
		&author, &channel, &thumbnail, &v.URL, &fetchedAt); err != nil {
		return models.Video{}, err
	}
	v.Description = description.String
	v.PublishDate = publishDate.String
	v.DurationSeconds = int(duration.Int64)
	v.ViewCount = views.Int64
	v.Author = author.String
	v.ChannelID = channel.String
	v.ThumbnailURL = thumbnail.String
	v.LastFetchedAt = timePtr(fetchedAt)
	return v, nil
}

// GetVideo returns a single video by id.
func (s *Store) GetVideo(ctx context.Context, id string) (models.Video, error) {
	v, err := scanVideo(s.db.QueryRowContext(ctx, s.q(`
		SELECT `+videoColumns+`
		FROM videos
		WHERE video_id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Video{}, ErrVideoNotFound
	}
	if err != nil {
		return models.Video{}, fmt.Errorf("get video: %w", err)
	}
	return v, nil
}

// UpsertVideo writes every column of v, replacing any stored row.
func (s *Store) UpsertVideo(ctx context.Context, v models.Video) error {
	if strings.TrimSpace(v.ID) == "" {
		return errors.New("video id is required")
	}
	if _, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO videos (`+videoColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (video_id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			publish_date = excluded.publish_date,
			duration_seconds = excluded.duration_seconds,
			view_count = excluded.view_count,
			author = excluded.author,
			channel_id = excluded.channel_id,
			thumbnail_url = excluded.thumbnail_url,
			video_url = excluded.video_url,
			last_fetched_at = excluded.last_fetched_at`),
		v.ID,
		v.Title,
		nullIfEmpty(v.Description),
		nullIfEmpty(v.PublishDate),
		v.DurationSeconds,
		v.ViewCount,
		nullIfEmpty(v.Author),
		nullIfEmpty(v.ChannelID),
		nullIfEmpty(v.ThumbnailURL),
		v.URL,
		nullTime(v.LastFetchedAt),
	); err != nil {
		return fmt.Errorf("upsert video: %w", err)
	}
	return nil
}

// EnsureVideo inserts v when no row exists for its id and reports whether it
// did. Existing rows are never modified.
func (s *Store) EnsureVideo(ctx context.Context, v models.Video) (bool, error) {
	return s.ensureVideo(ctx, s.db, v)
}

func (s *Store) ensureVideo(ctx context.Context, db execer, v models.Video) (bool, error) {
	res, err := db.ExecContext(ctx, s.q(`
		INSERT INTO videos (video_id, title, video_url, last_fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (video_id) DO NOTHING`), v.ID, v.Title, v.URL, nullTime(v.LastFetchedAt))
	if err != nil {
		return false, fmt.Errorf("ensure video: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// DeleteVideo removes a video; its memberships and transcripts cascade.
func (s *Store) DeleteVideo(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM videos WHERE video_id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrVideoNotFound
	}
	return nil
}

// SearchVideos matches query case-insensitively against titles and
// transcript bodies.
func (s *Store) SearchVideos(ctx context.Context, query string, limit int) ([]models.Video, error) {
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"

	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT `+videoColumns+`
		FROM videos
		WHERE LOWER(title) LIKE ? ESCAPE '\'
		   OR video_id IN (SELECT video_id FROM transcripts WHERE LOWER(transcript) LIKE ? ESCAPE '\')
		ORDER BY publish_date DESC, title
		LIMIT ?`), pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}
	return videos, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// FreshnessTimestamps returns when the video's metadata and its newest
// transcript were last fetched. Either is nil when never fetched, and both
// are nil for an unknown video.
func (s *Store) FreshnessTimestamps(ctx context.Context, videoID string) (*time.Time, *time.Time, error) {
	var fetchedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT last_fetched_at FROM videos WHERE video_id = ?`), videoID).Scan(&fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read video timestamp: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT last_fetched_at FROM transcripts WHERE video_id = ?`), videoID)
	if err != nil {
		return nil, nil, fmt.Errorf("read transcript timestamps: %w", err)
	}
	defer rows.Close()

	var newest *time.Time
	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return nil, nil, fmt.Errorf("scan transcript timestamp: %w", err)
		}
		if newest == nil || ts.After(*newest) {
			t := ts.UTC()
			newest = &t
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate transcript timestamps: %w", err)
	}
	return timePtr(fetchedAt), newest, nil
}
