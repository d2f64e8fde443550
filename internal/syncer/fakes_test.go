package syncer

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"ytshelf/internal/models"
	"ytshelf/internal/store"
	"ytshelf/internal/youtube"
)

// memStore keeps sync state in maps so engine tests can inspect it.
type memStore struct {
	mu          sync.RWMutex
	playlists   map[string]models.Playlist
	members     map[string]map[string]int
	videos      map[string]models.Video
	transcripts map[string]models.Transcript
	runs        map[string]models.SyncRun

	applyErr     error
	upsertErrFor map[string]error
	applyCalls   int
	videoWrites  int
}

func newMemStore(playlists ...models.Playlist) *memStore {
	s := &memStore{
		playlists:    make(map[string]models.Playlist),
		members:      make(map[string]map[string]int),
		videos:       make(map[string]models.Video),
		transcripts:  make(map[string]models.Transcript),
		runs:         make(map[string]models.SyncRun),
		upsertErrFor: make(map[string]error),
	}
	for _, p := range playlists {
		s.playlists[p.ID] = p
		s.members[p.ID] = make(map[string]int)
	}
	return s
}

func (s *memStore) setMembers(playlistID string, ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[playlistID] = make(map[string]int)
	for i, id := range ids {
		s.members[playlistID][id] = i + 1
		if _, ok := s.videos[id]; !ok {
			s.videos[id] = models.Video{ID: id}
		}
	}
}

func (s *memStore) memberIDs(playlistID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.members[playlistID]))
	for id := range s.members[playlistID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *memStore) position(playlistID, videoID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.members[playlistID][videoID]
}

func (s *memStore) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Playlist, 0, len(s.playlists))
	for _, p := range s.playlists {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *memStore) UpdatePlaylistSyncInfo(ctx context.Context, id string, itemCount int, syncedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.playlists[id]
	if !ok {
		return store.ErrPlaylistNotFound
	}
	p.ItemCount = &itemCount
	p.LastSyncedAt = &syncedAt
	s.playlists[id] = p
	return nil
}

func (s *memStore) ListMemberships(ctx context.Context, playlistID string) ([]models.PlaylistMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.PlaylistMembership
	for id, pos := range s.members[playlistID] {
		out = append(out, models.PlaylistMembership{PlaylistID: playlistID, VideoID: id, Position: pos})
	}
	return out, nil
}

func (s *memStore) ApplyMembershipDelta(ctx context.Context, delta models.MembershipDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyCalls++
	if s.applyErr != nil {
		return s.applyErr
	}
	m := s.members[delta.PlaylistID]
	if m == nil {
		m = make(map[string]int)
		s.members[delta.PlaylistID] = m
	}
	for _, a := range delta.Add {
		if _, ok := s.videos[a.VideoID]; !ok {
			s.videos[a.VideoID] = models.Video{ID: a.VideoID}
		}
		m[a.VideoID] = a.Position
	}
	for _, r := range delta.Reposition {
		m[r.VideoID] = r.Position
	}
	for _, id := range delta.Remove {
		delete(m, id)
	}
	return nil
}

func (s *memStore) FreshnessTimestamps(ctx context.Context, videoID string) (*time.Time, *time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var meta, tr *time.Time
	if v, ok := s.videos[videoID]; ok {
		meta = v.LastFetchedAt
	}
	for _, t := range s.transcripts {
		if t.VideoID != videoID {
			continue
		}
		at := t.LastFetchedAt
		if tr == nil || at.After(*tr) {
			tr = &at
		}
	}
	return meta, tr, nil
}

func (s *memStore) UpsertVideo(ctx context.Context, v models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.upsertErrFor[v.ID]; err != nil {
		return err
	}
	s.videoWrites++
	s.videos[v.ID] = v
	return nil
}

func (s *memStore) UpsertTranscript(ctx context.Context, t models.Transcript, allow store.ReplacePolicy) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := t.VideoID + "/" + t.Language
	if existing, ok := s.transcripts[key]; ok && allow != nil && !allow(existing.Text, t.Text) {
		return false, nil
	}
	s.transcripts[key] = t
	return true, nil
}

func (s *memStore) StartSyncRun(ctx context.Context, run models.SyncRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

func (s *memStore) FinishSyncRun(ctx context.Context, run models.SyncRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[run.ID]; !ok {
		return errors.New("unknown run")
	}
	s.runs[run.ID] = run
	return nil
}

func (s *memStore) run(id string) models.SyncRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runs[id]
}

type fakeLister struct {
	members map[string][]string
	errs    []error
	calls   int
}

func (f *fakeLister) ListPlaylistMembers(ctx context.Context, playlistID string) ([]string, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	ids, ok := f.members[playlistID]
	if !ok {
		return nil, youtube.ErrPlaylistNotFound
	}
	return append([]string{}, ids...), nil
}

type fetchCall struct {
	VideoID    string
	Transcript bool
}

type fakeFetcher struct {
	transcripts map[string]string
	errs        map[string][]error
	calls       []fetchCall
	onFetch     func(videoID string)
}

func (f *fakeFetcher) FetchVideo(ctx context.Context, videoID string, opts youtube.FetchOptions) (*youtube.FetchResult, error) {
	f.calls = append(f.calls, fetchCall{VideoID: videoID, Transcript: opts.Transcript})
	if f.onFetch != nil {
		f.onFetch(videoID)
	}
	if errs := f.errs[videoID]; len(errs) > 0 {
		err := errs[0]
		f.errs[videoID] = errs[1:]
		if err != nil {
			return nil, err
		}
	}
	result := &youtube.FetchResult{Video: models.Video{ID: videoID, Title: "Video " + videoID}}
	if !opts.Transcript {
		return result, nil
	}
	if text, ok := f.transcripts[videoID]; ok {
		result.Transcript = &models.Transcript{VideoID: videoID, Language: "en", Text: text}
	} else {
		result.TranscriptErr = youtube.ErrTranscriptUnavailable
	}
	return result, nil
}

func (f *fakeFetcher) fetched(videoID string) []fetchCall {
	var out []fetchCall
	for _, c := range f.calls {
		if c.VideoID == videoID {
			out = append(out, c)
		}
	}
	return out
}
