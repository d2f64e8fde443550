package playlists

import (
	"context"
	"errors"
	"sync"

	"ytshelf/internal/models"
	"ytshelf/internal/syncer"
)

// ErrSyncInProgress is returned when a sync is requested while one runs.
var ErrSyncInProgress = errors.New("sync already in progress")

// Store captures the persistence needs for playlist workflows.
type Store interface {
	ListPlaylists(ctx context.Context) ([]models.Playlist, error)
	GetPlaylist(ctx context.Context, id string) (models.Playlist, error)
	ListPlaylistVideos(ctx context.Context, playlistID string) ([]models.PlaylistVideo, error)
	ListSyncRuns(ctx context.Context, playlistID string, limit int) ([]models.SyncRun, error)
	Stats(ctx context.Context) (models.ArchiveStats, error)
}

// Syncer runs a sync pass over one playlist.
type Syncer interface {
	SyncPlaylist(ctx context.Context, p models.Playlist) syncer.PlaylistResult
}

// Service coordinates playlist-related operations.
type Service interface {
	List(ctx context.Context) ([]models.Playlist, error)
	Get(ctx context.Context, id string) (models.PlaylistWithVideos, error)
	Runs(ctx context.Context, id string, limit int) ([]models.SyncRun, error)
	Sync(ctx context.Context, id string) (syncer.PlaylistResult, error)
	Stats(ctx context.Context) (models.ArchiveStats, error)
}

type service struct {
	store  Store
	syncer Syncer
	// syncing admits one sync at a time; the engine is single-writer.
	syncing sync.Mutex
}

// New constructs a Service backed by the provided Store and Syncer.
func New(store Store, syncer Syncer) Service {
	return &service{store: store, syncer: syncer}
}

func (s *service) List(ctx context.Context) ([]models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListPlaylists(ctx)
}

func (s *service) Get(ctx context.Context, id string) (models.PlaylistWithVideos, error) {
	if err := ctx.Err(); err != nil {
		return models.PlaylistWithVideos{}, err
	}
	playlist, err := s.store.GetPlaylist(ctx, id)
	if err != nil {
		return models.PlaylistWithVideos{}, err
	}
	videos, err := s.store.ListPlaylistVideos(ctx, id)
	if err != nil {
		return models.PlaylistWithVideos{}, err
	}
	if videos == nil {
		videos = []models.PlaylistVideo{}
	}
	return models.PlaylistWithVideos{Playlist: playlist, Videos: videos}, nil
}

func (s *service) Runs(ctx context.Context, id string, limit int) ([]models.SyncRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := s.store.GetPlaylist(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListSyncRuns(ctx, id, limit)
}

func (s *service) Sync(ctx context.Context, id string) (syncer.PlaylistResult, error) {
	if err := ctx.Err(); err != nil {
		return syncer.PlaylistResult{}, err
	}
	if !s.syncing.TryLock() {
		return syncer.PlaylistResult{}, ErrSyncInProgress
	}
	defer s.syncing.Unlock()

	playlist, err := s.store.GetPlaylist(ctx, id)
	if err != nil {
		return syncer.PlaylistResult{}, err
	}
	return s.syncer.SyncPlaylist(ctx, playlist), nil
}

func (s *service) Stats(ctx context.Context) (models.ArchiveStats, error) {
	if err := ctx.Err(); err != nil {
		return models.ArchiveStats{}, err
	}
	return s.store.Stats(ctx)
}
