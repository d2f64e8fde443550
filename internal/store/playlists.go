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

var (
	// ErrPlaylistNotFound indicates no playlist has the requested id.
	ErrPlaylistNotFound = errors.New("playlist not found")
	// ErrPlaylistExists signals an insert of an already tracked playlist.
	ErrPlaylistExists = errors.New("playlist already exists")
)

const playlistColumns = `playlist_id, title, url, item_count, last_synced_at`

func scanPlaylist(row rowScanner) (models.Playlist, error) {
	var (
		p         models.Playlist
		itemCount sql.NullInt64
		syncedAt  sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.Title, &p.URL, &itemCount, &syncedAt); err != nil {
		return models.Playlist{}, err
	}
	if itemCount.Valid {
		n := int(itemCount.Int64)
		p.ItemCount = &n
	}
	p.LastSyncedAt = timePtr(syncedAt)
	return p, nil
}

// ListPlaylists returns every tracked playlist ordered by title.
func (s *Store) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+playlistColumns+`
		FROM playlists
		ORDER BY LOWER(title), playlist_id`)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
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
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	return playlists, nil
}

// GetPlaylist returns a single playlist by id.
func (s *Store) GetPlaylist(ctx context.Context, id string) (models.Playlist, error) {
	p, err := scanPlaylist(s.db.QueryRowContext(ctx, s.q(`
		SELECT `+playlistColumns+`
		FROM playlists
		WHERE playlist_id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Playlist{}, ErrPlaylistNotFound
	}
	if err != nil {
		return models.Playlist{}, fmt.Errorf("get playlist: %w", err)
	}
	return p, nil
}

// CreatePlaylist inserts a playlist that is not tracked yet.
func (s *Store) CreatePlaylist(ctx context.Context, p models.Playlist) error {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" || strings.TrimSpace(p.Title) == "" {
		return errors.New("playlist id and title are required")
	}

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO playlists (playlist_id, title, url)
		VALUES (?, ?, ?)`), p.ID, p.Title, p.URL)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrPlaylistExists
		}
		return fmt.Errorf("insert playlist: %w", err)
	}
	return nil
}

// UpsertPlaylist inserts a playlist or refreshes its title and URL. Sync
// bookkeeping columns are left alone.
func (s *Store) UpsertPlaylist(ctx context.Context, p models.Playlist) error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("playlist id is required")
	}
	if _, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO playlists (playlist_id, title, url)
		VALUES (?, ?, ?)
		ON CONFLICT (playlist_id) DO UPDATE
		SET title = excluded.title, url = excluded.url`), p.ID, p.Title, p.URL); err != nil {
		return fmt.Errorf("upsert playlist: %w", err)
	}
	return nil
}

// UpdatePlaylistSyncInfo records the remote item count and the sync time.
func (s *Store) UpdatePlaylistSyncInfo(ctx context.Context, id string, itemCount int, syncedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE playlists
		SET item_count = ?, last_synced_at = ?
		WHERE playlist_id = ?`), itemCount, syncedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("update playlist sync info: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}

// DeletePlaylist removes a playlist; memberships and sync runs cascade.
func (s *Store) DeletePlaylist(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM playlists WHERE playlist_id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}
