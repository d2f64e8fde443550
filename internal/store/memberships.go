package store

import (
	"context"
	"fmt"

	"ytshelf/internal/models"
	"ytshelf/internal/youtube"
)

// ListMemberships returns the stored membership of a playlist by position.
func (s *Store) ListMemberships(ctx context.Context, playlistID string) ([]models.PlaylistMembership, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT playlist_id, video_id, position
		FROM playlist_videos
		WHERE playlist_id = ?
		ORDER BY position, video_id`), playlistID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	var members []models.PlaylistMembership
	for rows.Next() {
		var m models.PlaylistMembership
		if err := rows.Scan(&m.PlaylistID, &m.VideoID, &m.Position); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}
	return members, nil
}

// ListPlaylistVideos returns a playlist's videos in position order.
func (s *Store) ListPlaylistVideos(ctx context.Context, playlistID string) ([]models.PlaylistVideo, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT pv.position, v.video_id, v.title, v.description, v.publish_date, v.duration_seconds,
			v.view_count, v.author, v.channel_id, v.thumbnail_url, v.video_url, v.last_fetched_at
		FROM playlist_videos pv
		JOIN videos v ON v.video_id = pv.video_id
		WHERE pv.playlist_id = ?
		ORDER BY pv.position, v.video_id`), playlistID)
	if err != nil {
		return nil, fmt.Errorf("list playlist videos: %w", err)
	}
	defer rows.Close()

	var videos []models.PlaylistVideo
	for rows.Next() {
		var pv models.PlaylistVideo
		v, err := scanVideo(countScanner{rows: rows, n: &pv.Position})
		if err != nil {
			return nil, fmt.Errorf("scan playlist video: %w", err)
		}
		pv.Video = v
		videos = append(videos, pv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlist videos: %w", err)
	}
	return videos, nil
}

// countScanner prepends one integer column (a position or a count) to a
// video scan.
type countScanner struct {
	rows rowScanner
	n    *int
}

func (c countScanner) Scan(dest ...interface{}) error {
	return c.rows.Scan(append([]interface{}{c.n}, dest...)...)
}

// ListVideoPlaylists returns the playlists that contain a video, by title.
func (s *Store) ListVideoPlaylists(ctx context.Context, videoID string) ([]models.Playlist, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT p.playlist_id, p.title, p.url, p.item_count, p.last_synced_at
		FROM playlists p
		JOIN playlist_videos pv ON pv.playlist_id = p.playlist_id
		WHERE pv.video_id = ?
		ORDER BY LOWER(p.title), p.playlist_id`), videoID)
	if err != nil {
		return nil, fmt.Errorf("list video playlists: %w", err)
	}
	defer rows.Close()

	var playlists []models.Playlist
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate video playlists: %w", err)
	}
	return playlists, nil
}

// ApplyMembershipDelta writes a playlist's membership changes atomically:
// stub rows for unknown videos, new memberships, position refreshes and
// removals either all land or none do.
func (s *Store) ApplyMembershipDelta(ctx context.Context, delta models.MembershipDelta) error {
	if delta.Empty() {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	for _, m := range delta.Add {
		stub := models.Video{ID: m.VideoID, URL: youtube.VideoURL(m.VideoID)}
		if _, err := s.ensureVideo(ctx, tx, stub); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO playlist_videos (playlist_id, video_id, position)
			VALUES (?, ?, ?)
			ON CONFLICT (playlist_id, video_id) DO UPDATE SET position = excluded.position`),
			delta.PlaylistID, m.VideoID, m.Position); err != nil {
			return fmt.Errorf("insert membership: %w", err)
		}
	}

	for _, m := range delta.Reposition {
		if _, err := tx.ExecContext(ctx, s.q(`
			UPDATE playlist_videos SET position = ?
			WHERE playlist_id = ? AND video_id = ?`),
			m.Position, delta.PlaylistID, m.VideoID); err != nil {
			return fmt.Errorf("update membership position: %w", err)
		}
	}

	for _, videoID := range delta.Remove {
		if _, err := tx.ExecContext(ctx, s.q(`
			DELETE FROM playlist_videos
			WHERE playlist_id = ? AND video_id = ?`),
			delta.PlaylistID, videoID); err != nil {
			return fmt.Errorf("delete membership: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit membership delta: %w", err)
	}
	tx = nil
	return nil
}
