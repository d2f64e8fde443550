package playlists

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytshelf/internal/models"
	"ytshelf/internal/store"
	"ytshelf/internal/syncer"
)

type stubStore struct {
	playlists map[string]models.Playlist
	videos    map[string][]models.PlaylistVideo
	runs      []models.SyncRun
	runLimit  int
	stats     models.ArchiveStats
}

func (s *stubStore) ListPlaylists(context.Context) ([]models.Playlist, error) {
	var out []models.Playlist
	for _, p := range s.playlists {
		out = append(out, p)
	}
	return out, nil
}

func (s *stubStore) GetPlaylist(_ context.Context, id string) (models.Playlist, error) {
	p, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, store.ErrPlaylistNotFound
	}
	return p, nil
}

func (s *stubStore) ListPlaylistVideos(_ context.Context, id string) ([]models.PlaylistVideo, error) {
	return s.videos[id], nil
}

func (s *stubStore) ListSyncRuns(_ context.Context, _ string, limit int) ([]models.SyncRun, error) {
	s.runLimit = limit
	return s.runs, nil
}

func (s *stubStore) Stats(context.Context) (models.ArchiveStats, error) {
	return s.stats, nil
}

type stubSyncer struct {
	started chan struct{}
	release chan struct{}
	synced  []string
}

func (s *stubSyncer) SyncPlaylist(_ context.Context, p models.Playlist) syncer.PlaylistResult {
	if s.started != nil {
		close(s.started)
		<-s.release
	}
	s.synced = append(s.synced, p.ID)
	return syncer.PlaylistResult{PlaylistID: p.ID, Phase: syncer.PhaseCompleted}
}

func newStubStore() *stubStore {
	return &stubStore{
		playlists: map[string]models.Playlist{"PL1": {ID: "PL1", Title: "Talks"}},
		videos: map[string][]models.PlaylistVideo{
			"PL1": {{Position: 1, Video: models.Video{ID: "vid1"}}},
		},
	}
}

func TestGetIncludesVideos(t *testing.T) {
	svc := New(newStubStore(), &stubSyncer{})

	got, err := svc.Get(context.Background(), "PL1")
	require.NoError(t, err)
	assert.Equal(t, "Talks", got.Title)
	require.Len(t, got.Videos, 1)
	assert.Equal(t, "vid1", got.Videos[0].Video.ID)
}

func TestGetMissingPlaylist(t *testing.T) {
	svc := New(newStubStore(), &stubSyncer{})

	_, err := svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrPlaylistNotFound)
}

func TestRunsRequiresPlaylist(t *testing.T) {
	st := newStubStore()
	st.runs = []models.SyncRun{{ID: "run1", PlaylistID: "PL1"}}
	svc := New(st, &stubSyncer{})

	runs, err := svc.Runs(context.Background(), "PL1", 5)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
	assert.Equal(t, 5, st.runLimit)

	_, err = svc.Runs(context.Background(), "missing", 5)
	assert.ErrorIs(t, err, store.ErrPlaylistNotFound)
}

func TestSyncRejectsConcurrentRequests(t *testing.T) {
	sy := &stubSyncer{started: make(chan struct{}), release: make(chan struct{})}
	svc := New(newStubStore(), sy)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Sync(context.Background(), "PL1")
		done <- err
	}()
	<-sy.started

	_, err := svc.Sync(context.Background(), "PL1")
	assert.ErrorIs(t, err, ErrSyncInProgress)

	close(sy.release)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"PL1"}, sy.synced)
}

func TestSyncHonoursCancelledContext(t *testing.T) {
	svc := New(newStubStore(), &stubSyncer{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Sync(ctx, "PL1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStats(t *testing.T) {
	st := newStubStore()
	st.stats = models.ArchiveStats{Playlists: 2, Videos: 9, CrossLinkedVideos: 1}
	svc := New(st, &stubSyncer{})

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Playlists)
	assert.Equal(t, 9, stats.Videos)
	assert.Equal(t, 1, stats.CrossLinkedVideos)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Stats(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
