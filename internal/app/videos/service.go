package videos

import (
	"context"
	"errors"
	"strings"
	"time"

	"ytshelf/internal/freshness"
	"ytshelf/internal/models"
)

// ErrEmptyQuery is returned when a search has nothing to look for.
var ErrEmptyQuery = errors.New("search query is required")

// Store captures the persistence needs for video lookups.
type Store interface {
	GetVideo(ctx context.Context, id string) (models.Video, error)
	ListTranscripts(ctx context.Context, videoID string) ([]models.Transcript, error)
	SearchVideos(ctx context.Context, query string, limit int) ([]models.Video, error)
	ListVideoPlaylists(ctx context.Context, videoID string) ([]models.Playlist, error)
	ListCrossLinkedVideos(ctx context.Context) ([]models.CrossLinkedVideo, error)
}

// Details is a video with its freshness as seen by the sync engine.
type Details struct {
	models.Video
	MetadataStale       bool              `json:"metadata_stale"`
	TranscriptLanguages []string          `json:"transcript_languages"`
	Playlists           []models.Playlist `json:"playlists"`
}

// Service exposes read-only video workflows.
type Service interface {
	Get(ctx context.Context, id string) (Details, error)
	Transcripts(ctx context.Context, id string) ([]models.Transcript, error)
	Search(ctx context.Context, query string, limit int) ([]models.Video, error)
	CrossLinked(ctx context.Context) ([]models.CrossLinkedVideo, error)
}

type service struct {
	store Store
	fresh freshness.Policy
	now   func() time.Time
}

// New constructs a Service backed by the provided Store.
func New(store Store, fresh freshness.Policy) Service {
	return &service{store: store, fresh: fresh, now: time.Now}
}

func (s *service) Get(ctx context.Context, id string) (Details, error) {
	if err := ctx.Err(); err != nil {
		return Details{}, err
	}
	video, err := s.store.GetVideo(ctx, id)
	if err != nil {
		return Details{}, err
	}
	transcripts, err := s.store.ListTranscripts(ctx, id)
	if err != nil {
		return Details{}, err
	}
	languages := make([]string, 0, len(transcripts))
	for _, t := range transcripts {
		languages = append(languages, t.Language)
	}
	playlists, err := s.store.ListVideoPlaylists(ctx, id)
	if err != nil {
		return Details{}, err
	}
	if playlists == nil {
		playlists = []models.Playlist{}
	}
	return Details{
		Video:               video,
		MetadataStale:       s.fresh.NeedsRefresh(video.LastFetchedAt, s.now()),
		TranscriptLanguages: languages,
		Playlists:           playlists,
	}, nil
}

func (s *service) Transcripts(ctx context.Context, id string) ([]models.Transcript, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := s.store.GetVideo(ctx, id); err != nil {
		return nil, err
	}
	transcripts, err := s.store.ListTranscripts(ctx, id)
	if err != nil {
		return nil, err
	}
	if transcripts == nil {
		transcripts = []models.Transcript{}
	}
	return transcripts, nil
}

func (s *service) Search(ctx context.Context, query string, limit int) ([]models.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	videos, err := s.store.SearchVideos(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if videos == nil {
		videos = []models.Video{}
	}
	return videos, nil
}

func (s *service) CrossLinked(ctx context.Context) ([]models.CrossLinkedVideo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	videos, err := s.store.ListCrossLinkedVideos(ctx)
	if err != nil {
		return nil, err
	}
	if videos == nil {
		videos = []models.CrossLinkedVideo{}
	}
	return videos, nil
}
