package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ytshelf/internal/models"
)

const topChannelLimit = 5

// Stats counts playlists, videos, transcribed videos and videos shared by
// several playlists, and reports the most recent metadata fetch and the
// authors with the most videos.
func (s *Store) Stats(ctx context.Context) (models.ArchiveStats, error) {
	var stats models.ArchiveStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM playlists),
			(SELECT COUNT(*) FROM videos),
			(SELECT COUNT(DISTINCT video_id) FROM transcripts),
			(SELECT COUNT(*) FROM (
				SELECT video_id FROM playlist_videos
				GROUP BY video_id
				HAVING COUNT(DISTINCT playlist_id) > 1
			) shared)`).
		Scan(&stats.Playlists, &stats.Videos, &stats.VideosWithTranscripts, &stats.CrossLinkedVideos)
	if err != nil {
		return models.ArchiveStats{}, fmt.Errorf("count archive: %w", err)
	}

	// Ordering on the column keeps its declared type; MAX() would not.
	var lastUpdate sql.NullTime
	err = s.db.QueryRowContext(ctx, `
		SELECT last_fetched_at FROM videos
		WHERE last_fetched_at IS NOT NULL
		ORDER BY last_fetched_at DESC
		LIMIT 1`).Scan(&lastUpdate)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return models.ArchiveStats{}, fmt.Errorf("read last update: %w", err)
	}
	stats.LastUpdate = timePtr(lastUpdate)

	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT author, COUNT(*) AS video_count
		FROM videos
		WHERE author IS NOT NULL AND author <> ''
		GROUP BY author
		ORDER BY video_count DESC, author
		LIMIT ?`), topChannelLimit)
	if err != nil {
		return models.ArchiveStats{}, fmt.Errorf("top channels: %w", err)
	}
	defer rows.Close()

	stats.TopChannels = []models.ChannelCount{}
	for rows.Next() {
		var c models.ChannelCount
		if err := rows.Scan(&c.Author, &c.Videos); err != nil {
			return models.ArchiveStats{}, fmt.Errorf("scan channel count: %w", err)
		}
		stats.TopChannels = append(stats.TopChannels, c)
	}
	if err := rows.Err(); err != nil {
		return models.ArchiveStats{}, fmt.Errorf("iterate channel counts: %w", err)
	}
	return stats, nil
}

// ListCrossLinkedVideos returns videos that appear in more than one
// playlist, most shared first.
func (s *Store) ListCrossLinkedVideos(ctx context.Context) ([]models.CrossLinkedVideo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT shared.playlist_count, v.video_id, v.title, v.description, v.publish_date, v.duration_seconds,
			v.view_count, v.author, v.channel_id, v.thumbnail_url, v.video_url, v.last_fetched_at
		FROM videos v
		JOIN (
			SELECT video_id, COUNT(DISTINCT playlist_id) AS playlist_count
			FROM playlist_videos
			GROUP BY video_id
			HAVING COUNT(DISTINCT playlist_id) > 1
		) shared ON shared.video_id = v.video_id
		ORDER BY shared.playlist_count DESC, LOWER(v.title), v.video_id`)
	if err != nil {
		return nil, fmt.Errorf("list cross-linked videos: %w", err)
	}
	defer rows.Close()

	var videos []models.CrossLinkedVideo
	for rows.Next() {
		var cv models.CrossLinkedVideo
		v, err := scanVideo(countScanner{rows: rows, n: &cv.PlaylistCount})
		if err != nil {
			return nil, fmt.Errorf("scan cross-linked video: %w", err)
		}
		cv.Video = v
		videos = append(videos, cv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cross-linked videos: %w", err)
	}
	return videos, nil
}
