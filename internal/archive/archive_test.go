package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytshelf/internal/models"
	"ytshelf/internal/store"
)

type memStore struct {
	playlists   map[string]models.Playlist
	members     map[string][]models.PlaylistMembership
	videos      map[string]models.Video
	transcripts map[string][]models.Transcript
}

func newMemStore() *memStore {
	return &memStore{
		playlists:   make(map[string]models.Playlist),
		members:     make(map[string][]models.PlaylistMembership),
		videos:      make(map[string]models.Video),
		transcripts: make(map[string][]models.Transcript),
	}
}

func (s *memStore) ListPlaylists(context.Context) ([]models.Playlist, error) {
	out := make([]models.Playlist, 0, len(s.playlists))
	for _, p := range s.playlists {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) GetPlaylist(_ context.Context, id string) (models.Playlist, error) {
	p, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, store.ErrPlaylistNotFound
	}
	return p, nil
}

func (s *memStore) CreatePlaylist(_ context.Context, p models.Playlist) error {
	if _, ok := s.playlists[p.ID]; ok {
		return store.ErrPlaylistExists
	}
	s.playlists[p.ID] = p
	return nil
}

func (s *memStore) UpsertPlaylist(_ context.Context, p models.Playlist) error {
	s.playlists[p.ID] = p
	return nil
}

func (s *memStore) ListMemberships(_ context.Context, id string) ([]models.PlaylistMembership, error) {
	return append([]models.PlaylistMembership{}, s.members[id]...), nil
}

func (s *memStore) ListPlaylistVideos(_ context.Context, id string) ([]models.PlaylistVideo, error) {
	var out []models.PlaylistVideo
	for _, m := range s.members[id] {
		out = append(out, models.PlaylistVideo{Position: m.Position, Video: s.videos[m.VideoID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (s *memStore) EnsureVideo(_ context.Context, v models.Video) (bool, error) {
	if _, ok := s.videos[v.ID]; ok {
		return false, nil
	}
	s.videos[v.ID] = v
	return true, nil
}

func (s *memStore) ListTranscripts(_ context.Context, id string) ([]models.Transcript, error) {
	return s.transcripts[id], nil
}

func (s *memStore) UpsertTranscript(_ context.Context, t models.Transcript, allow store.ReplacePolicy) (bool, error) {
	list := s.transcripts[t.VideoID]
	for i, existing := range list {
		if existing.Language != t.Language {
			continue
		}
		if allow != nil && !allow(existing.Text, t.Text) {
			return false, nil
		}
		list[i] = t
		return true, nil
	}
	s.transcripts[t.VideoID] = append(list, t)
	return true, nil
}

type stubChannelLister struct {
	playlists []models.Playlist
	err       error
	channel   string
}

func (s *stubChannelLister) ListChannelPlaylists(_ context.Context, channel string) ([]models.Playlist, error) {
	s.channel = channel
	return s.playlists, s.err
}

func newTestArchive(st *memStore) *Archive {
	a := New(st, zerolog.Nop())
	a.now = func() time.Time { return time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC) }
	return a
}

func TestImportPlaylists(t *testing.T) {
	st := newMemStore()
	st.playlists["PLold"] = models.Playlist{ID: "PLold", Title: "Keep me"}
	input := `[
		{"playlist_id": "PLnew", "title": "New"},
		{"id": "PLalt", "title": "Alt key", "url": "https://example.com/alt"},
		{"playlist_id": "PLold", "title": "Renamed"},
		{"playlist_id": "", "title": "No id"},
		{"playlist_id": "PLnotitle"}
	]`

	report, err := newTestArchive(st).ImportPlaylists(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, ImportReport{Inserted: 2, Skipped: 3}, report)
	assert.Equal(t, "https://www.youtube.com/playlist?list=PLnew", st.playlists["PLnew"].URL)
	assert.Equal(t, "https://example.com/alt", st.playlists["PLalt"].URL)
	assert.Equal(t, "Keep me", st.playlists["PLold"].Title)
}

func TestImportPlaylistsRejectsBadJSON(t *testing.T) {
	_, err := newTestArchive(newMemStore()).ImportPlaylists(context.Background(), strings.NewReader(`{"not": "a list"}`))
	assert.Error(t, err)
}

func TestExportPlaylists(t *testing.T) {
	st := newMemStore()
	st.playlists["PL1"] = models.Playlist{ID: "PL1", Title: "zebra", URL: "u1"}
	st.playlists["PL2"] = models.Playlist{ID: "PL2", Title: "Apple", URL: "u2"}
	st.members["PL1"] = []models.PlaylistMembership{
		{PlaylistID: "PL1", VideoID: "second", Position: 2},
		{PlaylistID: "PL1", VideoID: "first", Position: 1},
	}

	var buf bytes.Buffer
	n, err := newTestArchive(st).ExportPlaylists(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var got []exportedPlaylist
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "PL2", got[0].PlaylistID)
	assert.Empty(t, got[0].VideoIDs)
	assert.Equal(t, []string{"first", "second"}, got[1].VideoIDs)
}

func TestDiscover(t *testing.T) {
	st := newMemStore()
	st.playlists["PL1"] = models.Playlist{ID: "PL1", Title: "Old title"}
	lister := &stubChannelLister{playlists: []models.Playlist{
		{ID: "PL1", Title: "New title", URL: "u1"},
		{ID: "PL2", Title: "Second", URL: "u2"},
	}}

	found, err := newTestArchive(st).Discover(context.Background(), lister, "@gopher")
	require.NoError(t, err)

	assert.Len(t, found, 2)
	assert.Equal(t, "@gopher", lister.channel)
	assert.Equal(t, "New title", st.playlists["PL1"].Title)
	assert.Contains(t, st.playlists, "PL2")
}

func TestDiscoverListerError(t *testing.T) {
	lister := &stubChannelLister{err: errors.New("channel not found")}
	_, err := newTestArchive(newMemStore()).Discover(context.Background(), lister, "@nobody")
	assert.Error(t, err)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportTranscripts(t *testing.T) {
	dir := t.TempDir()
	st := newMemStore()
	st.transcripts["bbbbbbbbbbb"] = []models.Transcript{{VideoID: "bbbbbbbbbbb", Language: "en", Text: "[00:01] timed"}}

	writeFile(t, dir, "a.txt", "TITLE: First\nURL: https://www.youtube.com/watch?v=aaaaaaaaaaa\n\nhello world\n")
	writeFile(t, dir, "b.txt", "ID: bbbbbbbbbbb\n\nplain replacement\n")
	writeFile(t, dir, "broken.txt", "no header here")
	writeFile(t, dir, "ignored.md", "TITLE: x\nID: ccccccccccc\n\nbody\n")

	report, err := newTestArchive(st).ImportTranscripts(context.Background(), dir, ImportOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 1, report.Kept)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	assert.Contains(t, report.Failures[0], "broken.txt")

	assert.Equal(t, "First", st.videos["aaaaaaaaaaa"].Title)
	require.Len(t, st.transcripts["aaaaaaaaaaa"], 1)
	assert.Equal(t, "hello world", st.transcripts["aaaaaaaaaaa"][0].Text)
	assert.Equal(t, ImportedLanguage, st.transcripts["aaaaaaaaaaa"][0].Language)
	assert.Equal(t, "[00:01] timed", st.transcripts["bbbbbbbbbbb"][0].Text)
	assert.Equal(t, "Video bbbbbbbbbbb", st.videos["bbbbbbbbbbb"].Title)
	assert.NotContains(t, st.videos, "ccccccccccc")
}

func TestImportTranscriptsRemovesProcessedFiles(t *testing.T) {
	dir := t.TempDir()
	done := writeFile(t, dir, "a.txt", "ID: aaaaaaaaaaa\n\nbody\n")
	broken := writeFile(t, dir, "broken.txt", "")

	_, err := newTestArchive(newMemStore()).ImportTranscripts(context.Background(), dir, ImportOptions{RemoveProcessed: true})
	require.NoError(t, err)

	assert.NoFileExists(t, done)
	assert.FileExists(t, broken)
}

func TestExportTranscriptsRoundTrip(t *testing.T) {
	st := newMemStore()
	st.playlists["PL1"] = models.Playlist{ID: "PL1", Title: "Talks"}
	st.videos["aaaaaaaaaaa"] = models.Video{ID: "aaaaaaaaaaa", Title: "What/Why?"}
	st.videos["bbbbbbbbbbb"] = models.Video{ID: "bbbbbbbbbbb"}
	st.members["PL1"] = []models.PlaylistMembership{
		{PlaylistID: "PL1", VideoID: "aaaaaaaaaaa", Position: 1},
		{PlaylistID: "PL1", VideoID: "bbbbbbbbbbb", Position: 2},
	}
	st.transcripts["aaaaaaaaaaa"] = []models.Transcript{
		{VideoID: "aaaaaaaaaaa", Language: "de", Text: "hallo"},
		{VideoID: "aaaaaaaaaaa", Language: "en", Text: "line one\nline two"},
	}
	dir := t.TempDir()

	n, err := newTestArchive(st).ExportTranscripts(context.Background(), "PL1", dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	path := filepath.Join(dir, "aaaaaaaaaaa_What_Why_.txt")
	require.FileExists(t, path)

	fresh := newMemStore()
	report, err := newTestArchive(fresh).ImportTranscripts(context.Background(), dir, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, "What/Why?", fresh.videos["aaaaaaaaaaa"].Title)
	assert.Equal(t, "line one\nline two", fresh.transcripts["aaaaaaaaaaa"][0].Text)
}

func TestExportTranscriptsUnknownPlaylist(t *testing.T) {
	_, err := newTestArchive(newMemStore()).ExportTranscripts(context.Background(), "missing", t.TempDir())
	assert.ErrorIs(t, err, store.ErrPlaylistNotFound)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a_b_c", sanitizeFilename("a/b:c"))
	assert.Equal(t, "untitled", sanitizeFilename("  "))
	assert.Len(t, []rune(sanitizeFilename(strings.Repeat("é", 150))), 100)
}
