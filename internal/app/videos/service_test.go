package videos

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytshelf/internal/freshness"
	"ytshelf/internal/models"
	"ytshelf/internal/store"
)

type stubStore struct {
	videos      map[string]models.Video
	transcripts map[string][]models.Transcript
	playlists   map[string][]models.Playlist
	crossLinked []models.CrossLinkedVideo
	lastQuery   string
}

func (s *stubStore) GetVideo(_ context.Context, id string) (models.Video, error) {
	v, ok := s.videos[id]
	if !ok {
		return models.Video{}, store.ErrVideoNotFound
	}
	return v, nil
}

func (s *stubStore) ListTranscripts(_ context.Context, id string) ([]models.Transcript, error) {
	return s.transcripts[id], nil
}

func (s *stubStore) SearchVideos(_ context.Context, query string, _ int) ([]models.Video, error) {
	s.lastQuery = query
	return nil, nil
}

func (s *stubStore) ListVideoPlaylists(_ context.Context, id string) ([]models.Playlist, error) {
	return s.playlists[id], nil
}

func (s *stubStore) ListCrossLinkedVideos(context.Context) ([]models.CrossLinkedVideo, error) {
	return s.crossLinked, nil
}

func TestGetReportsStaleness(t *testing.T) {
	now := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	old := now.Add(-8 * 24 * time.Hour)
	recent := now.Add(-time.Hour)
	st := &stubStore{
		videos: map[string]models.Video{
			"old":    {ID: "old", LastFetchedAt: &old},
			"recent": {ID: "recent", LastFetchedAt: &recent},
			"stub":   {ID: "stub"},
		},
		transcripts: map[string][]models.Transcript{
			"recent": {{VideoID: "recent", Language: "en"}, {VideoID: "recent", Language: "de"}},
		},
	}
	svc := &service{store: st, fresh: freshness.New(0), now: func() time.Time { return now }}

	d, err := svc.Get(context.Background(), "old")
	require.NoError(t, err)
	assert.True(t, d.MetadataStale)
	assert.Empty(t, d.TranscriptLanguages)

	d, err = svc.Get(context.Background(), "recent")
	require.NoError(t, err)
	assert.False(t, d.MetadataStale)
	assert.Equal(t, []string{"en", "de"}, d.TranscriptLanguages)

	d, err = svc.Get(context.Background(), "stub")
	require.NoError(t, err)
	assert.True(t, d.MetadataStale)
}

func TestTranscriptsUnknownVideo(t *testing.T) {
	svc := New(&stubStore{}, freshness.New(0))

	_, err := svc.Transcripts(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrVideoNotFound)
}

func TestTranscriptsNeverNil(t *testing.T) {
	st := &stubStore{videos: map[string]models.Video{"v": {ID: "v"}}}
	svc := New(st, freshness.New(0))

	got, err := svc.Transcripts(context.Background(), "v")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearch(t *testing.T) {
	st := &stubStore{}
	svc := New(st, freshness.New(0))

	_, err := svc.Search(context.Background(), "   ", 10)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	got, err := svc.Search(context.Background(), " golang ", 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, "golang", st.lastQuery)
}

func TestGetListsContainingPlaylists(t *testing.T) {
	st := &stubStore{
		videos:    map[string]models.Video{"shared": {ID: "shared"}, "lonely": {ID: "lonely"}},
		playlists: map[string][]models.Playlist{"shared": {{ID: "PL1", Title: "Alpha"}, {ID: "PL2", Title: "Beta"}}},
	}
	svc := New(st, freshness.New(0))

	d, err := svc.Get(context.Background(), "shared")
	require.NoError(t, err)
	require.Len(t, d.Playlists, 2)
	assert.Equal(t, "PL1", d.Playlists[0].ID)

	d, err = svc.Get(context.Background(), "lonely")
	require.NoError(t, err)
	assert.NotNil(t, d.Playlists)
	assert.Empty(t, d.Playlists)
}

func TestCrossLinked(t *testing.T) {
	svc := New(&stubStore{}, freshness.New(0))
	videos, err := svc.CrossLinked(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, videos)
	assert.Empty(t, videos)

	st := &stubStore{crossLinked: []models.CrossLinkedVideo{{Video: models.Video{ID: "a"}, PlaylistCount: 3}}}
	videos, err = New(st, freshness.New(0)).CrossLinked(context.Background())
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, 3, videos[0].PlaylistCount)
}
