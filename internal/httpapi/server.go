package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"ytshelf/internal/app/playlists"
	"ytshelf/internal/app/videos"
	"ytshelf/internal/models"
	"ytshelf/internal/store"
	"ytshelf/internal/syncer"
)

// PlaylistService coordinates playlist-related operations.
type PlaylistService interface {
	List(ctx context.Context) ([]models.Playlist, error)
	Get(ctx context.Context, id string) (models.PlaylistWithVideos, error)
	Runs(ctx context.Context, id string, limit int) ([]models.SyncRun, error)
	Sync(ctx context.Context, id string) (syncer.PlaylistResult, error)
	Stats(ctx context.Context) (models.ArchiveStats, error)
}

// VideoService exposes video lookups and search.
type VideoService interface {
	Get(ctx context.Context, id string) (videos.Details, error)
	Transcripts(ctx context.Context, id string) ([]models.Transcript, error)
	Search(ctx context.Context, query string, limit int) ([]models.Video, error)
	CrossLinked(ctx context.Context) ([]models.CrossLinkedVideo, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	playlists      PlaylistService
	videos         VideoService
	log            zerolog.Logger
	allowedOrigins []string
}

// Option customises a Server.
type Option func(*Server)

// WithAllowedOrigins enables CORS for browser viewers served from origins.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.allowedOrigins = origins }
}

// New configures a Server with the given services.
func New(playlists PlaylistService, videos VideoService, log zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		playlists: playlists,
		videos:    videos,
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes exposes the read-only archive API and the manual sync trigger.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("GET /api/v1/stats", s.handleStats)

	// Playlist routes
	mux.HandleFunc("GET /api/v1/playlists", s.handleListPlaylists)
	mux.HandleFunc("GET /api/v1/playlists/{id}", s.handleGetPlaylist)
	mux.HandleFunc("GET /api/v1/playlists/{id}/runs", s.handleListRuns)
	mux.HandleFunc("POST /api/v1/playlists/{id}/sync", s.handleSyncPlaylist)

	// Video routes
	mux.HandleFunc("GET /api/v1/videos/cross-linked", s.handleCrossLinked)
	mux.HandleFunc("GET /api/v1/videos/{id}", s.handleGetVideo)
	mux.HandleFunc("GET /api/v1/videos/{id}/transcripts", s.handleListTranscripts)
	mux.HandleFunc("GET /api/v1/search", s.handleSearch)

	return RequestLogging(s.log)(CORS(s.allowedOrigins)(Recovery(s.log)(mux)))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.playlists.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	list, err := s.playlists.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Playlist{}
	}
	writeJSON(w, http.StatusOK, struct {
		Playlists []models.Playlist `json:"playlists"`
	}{Playlists: list})
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, err := s.playlists.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	runs, err := s.playlists.Runs(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if runs == nil {
		runs = []models.SyncRun{}
	}
	writeJSON(w, http.StatusOK, struct {
		Runs []models.SyncRun `json:"runs"`
	}{Runs: runs})
}

func (s *Server) handleSyncPlaylist(w http.ResponseWriter, r *http.Request) {
	result, err := s.playlists.Sync(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	switch {
	case result.Succeeded():
	case errors.Is(result.Err, syncer.ErrMembershipFetch):
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, result)
}

func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	video, err := s.videos.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, video)
}

func (s *Server) handleCrossLinked(w http.ResponseWriter, r *http.Request) {
	shared, err := s.videos.CrossLinked(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Videos []models.CrossLinkedVideo `json:"videos"`
	}{Videos: shared})
}

func (s *Server) handleListTranscripts(w http.ResponseWriter, r *http.Request) {
	transcripts, err := s.videos.Transcripts(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Transcripts []models.Transcript `json:"transcripts"`
	}{Transcripts: transcripts})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	results, err := s.videos.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Videos []models.Video `json:"videos"`
	}{Videos: results})
}

// parseLimit reads the optional ?limit= parameter. Zero means the store default.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
		return 0, false
	}
	return limit, true
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrPlaylistNotFound), errors.Is(err, store.ErrVideoNotFound):
		status = http.StatusNotFound
	case errors.Is(err, playlists.ErrSyncInProgress):
		status = http.StatusConflict
	case errors.Is(err, videos.ErrEmptyQuery):
		status = http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads the body.
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
