// Package syncer keeps stored playlists in step with YouTube: it reconciles
// membership and refetches videos whose metadata or transcript went stale.
package syncer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"ytshelf/internal/freshness"
	"ytshelf/internal/models"
	"ytshelf/internal/retry"
	"ytshelf/internal/store"
	"ytshelf/internal/transcript"
	"ytshelf/internal/youtube"
)

// Store is the persistence the engine needs.
type Store interface {
	ListPlaylists(ctx context.Context) ([]models.Playlist, error)
	UpdatePlaylistSyncInfo(ctx context.Context, id string, itemCount int, syncedAt time.Time) error
	ListMemberships(ctx context.Context, playlistID string) ([]models.PlaylistMembership, error)
	ApplyMembershipDelta(ctx context.Context, delta models.MembershipDelta) error
	FreshnessTimestamps(ctx context.Context, videoID string) (*time.Time, *time.Time, error)
	UpsertVideo(ctx context.Context, v models.Video) error
	UpsertTranscript(ctx context.Context, t models.Transcript, allow store.ReplacePolicy) (bool, error)
	StartSyncRun(ctx context.Context, run models.SyncRun) error
	FinishSyncRun(ctx context.Context, run models.SyncRun) error
}

// MembershipLister lists the current video ids of a remote playlist in
// playlist order. A failed listing must be an error, never an empty slice.
type MembershipLister interface {
	ListPlaylistMembers(ctx context.Context, playlistID string) ([]string, error)
}

// VideoFetcher fetches metadata and optionally a transcript for one video.
type VideoFetcher interface {
	FetchVideo(ctx context.Context, videoID string, opts youtube.FetchOptions) (*youtube.FetchResult, error)
}

// Config tunes a sync pass.
type Config struct {
	RefreshThreshold time.Duration
	// VideoDelay is the minimum spacing between remote video fetches.
	VideoDelay      time.Duration
	MembershipRetry retry.Policy
	VideoRetry      retry.Policy
}

// DefaultConfig mirrors the production defaults.
func DefaultConfig() Config {
	return Config{
		RefreshThreshold: freshness.DefaultThreshold,
		VideoDelay:       time.Second,
		MembershipRetry: retry.Policy{
			MaxAttempts: 3,
			Backoff:     retry.WithJitter(retry.Exponential(2*time.Second, 2, 30*time.Second), 0.1),
		},
		VideoRetry: retry.Policy{
			MaxAttempts: 2,
			Backoff:     retry.Constant(2 * time.Second),
		},
	}
}

// Option customises an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRetryClassifier replaces the default transient-error test.
func WithRetryClassifier(c retry.ErrorClassifier) Option {
	return func(e *Engine) { e.classify = c }
}

// Engine runs sync passes. It processes one playlist and one video at a time.
type Engine struct {
	store    Store
	lister   MembershipLister
	fetcher  VideoFetcher
	cfg      Config
	fresh    freshness.Policy
	limiter  *rate.Limiter
	log      zerolog.Logger
	now      func() time.Time
	classify retry.ErrorClassifier
}

// New builds an Engine.
func New(st Store, lister MembershipLister, fetcher VideoFetcher, cfg Config, log zerolog.Logger, opts ...Option) *Engine {
	limit := rate.Inf
	if cfg.VideoDelay > 0 {
		limit = rate.Every(cfg.VideoDelay)
	}
	e := &Engine{
		store:    st,
		lister:   lister,
		fetcher:  fetcher,
		cfg:      cfg,
		fresh:    freshness.New(cfg.RefreshThreshold),
		limiter:  rate.NewLimiter(limit, 1),
		log:      log,
		now:      time.Now,
		classify: youtube.IsRetryable,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run syncs every stored playlist in title order. A failed playlist does not
// stop the run. The error is non-nil only when playlists cannot be listed;
// on cancellation the summary covers the playlists processed so far.
func (e *Engine) Run(ctx context.Context) (*Summary, error) {
	playlists, err := e.store.ListPlaylists(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list playlists", Err: err}
	}
	return e.RunPlaylists(ctx, playlists), nil
}

// RunPlaylists syncs the given playlists in order.
func (e *Engine) RunPlaylists(ctx context.Context, playlists []models.Playlist) *Summary {
	summary := &Summary{RunID: uuid.NewString(), StartedAt: e.now()}
	log := e.log.With().Str("run_id", summary.RunID).Logger()
	log.Info().Int("playlists", len(playlists)).Msg("sync run started")

	for _, p := range playlists {
		if ctx.Err() != nil {
			log.Warn().Err(ctx.Err()).Msg("sync run interrupted")
			break
		}
		summary.Playlists = append(summary.Playlists, e.SyncPlaylist(ctx, p))
	}

	summary.Duration = e.now().Sub(summary.StartedAt)
	totals := summary.Totals()
	log.Info().
		Int("succeeded", totals.Succeeded).
		Int("failed", totals.Failed).
		Int("scraped", totals.Scraped).
		Int("skipped", totals.Skipped).
		Int("videos_failed", totals.VideosFailed).
		Dur("duration", summary.Duration).
		Msg("sync run finished")
	return summary
}

// SyncPlaylist runs one pass over a playlist. The result is Completed unless
// the membership fetch or the membership write failed or ctx was cancelled.
func (e *Engine) SyncPlaylist(ctx context.Context, p models.Playlist) (res PlaylistResult) {
	res = PlaylistResult{
		PlaylistID: p.ID,
		Title:      p.Title,
		RunID:      uuid.NewString(),
		Phase:      PhasePending,
		StartedAt:  e.now(),
	}
	log := e.log.With().Str("playlist_id", p.ID).Str("run_id", res.RunID).Logger()

	// Run bookkeeping must land even when ctx is cancelled mid-pass.
	bookkeeping := context.WithoutCancel(ctx)
	run := models.SyncRun{ID: res.RunID, PlaylistID: p.ID, StartedAt: res.StartedAt, Status: models.SyncRunStarted}
	if err := e.store.StartSyncRun(bookkeeping, run); err != nil {
		log.Warn().Err(err).Msg("record sync run start")
	}
	defer func() {
		res.Duration = e.now().Sub(res.StartedAt)
		if res.Err != nil {
			res.Error = res.Err.Error()
		}
		e.finishRun(bookkeeping, log, run, res)
	}()

	log.Info().Str("title", p.Title).Msg("syncing playlist")
	res.Phase = PhaseFetchingMembership
	remote, err := e.fetchMembers(ctx, log, p.ID)
	if err != nil {
		res.fail(err)
		log.Error().Err(err).Msg("playlist sync failed")
		return res
	}

	ordered := uniqueInOrder(remote)
	if err := e.store.UpdatePlaylistSyncInfo(ctx, p.ID, len(ordered), e.now()); err != nil {
		log.Warn().Err(err).Msg("record playlist sync info")
	}

	local, err := e.store.ListMemberships(ctx, p.ID)
	if err != nil {
		res.fail(&PersistenceError{Op: "load memberships", Err: err})
		log.Error().Err(res.Err).Msg("playlist sync failed")
		return res
	}

	delta := planDelta(p.ID, ordered, local)
	res.Phase = PhaseDiffed
	log.Debug().
		Int("add", len(delta.Add)).
		Int("remove", len(delta.Remove)).
		Int("reposition", len(delta.Reposition)).
		Msg("membership diffed")

	res.Phase = PhaseApplyingDelta
	if !delta.Empty() {
		if err := e.store.ApplyMembershipDelta(ctx, delta); err != nil {
			res.fail(&PersistenceError{Op: "apply membership delta", Err: err})
			log.Error().Err(res.Err).Msg("playlist sync failed")
			return res
		}
	}
	res.Added = len(delta.Add)
	res.Removed = len(delta.Remove)
	res.Phase = PhaseSynced
	log.Info().
		Int("remote", len(ordered)).
		Int("added", res.Added).
		Int("removed", res.Removed).
		Int("repositioned", len(delta.Reposition)).
		Msg("membership synced")

	res.Phase = PhaseRefreshingVideos
	for _, videoID := range ordered {
		if ctx.Err() != nil {
			res.fail(ctx.Err())
			log.Warn().Err(res.Err).Msg("playlist sync interrupted")
			return res
		}
		if err := e.refreshVideo(ctx, log.With().Str("video_id", videoID).Logger(), videoID, &res); err != nil {
			res.fail(err)
			log.Warn().Err(err).Msg("playlist sync interrupted")
			return res
		}
	}

	res.Phase = PhaseCompleted
	log.Info().
		Int("scraped", res.Scraped).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Msg("playlist sync completed")
	return res
}

func (e *Engine) fetchMembers(ctx context.Context, log zerolog.Logger, playlistID string) ([]string, error) {
	policy := e.withRetryLog(e.cfg.MembershipRetry, log)
	var remote []string
	err := retry.Do(ctx, policy, e.classify, func(ctx context.Context) error {
		ids, err := e.lister.ListPlaylistMembers(ctx, playlistID)
		if err != nil {
			return err
		}
		remote = ids
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &MembershipFetchError{PlaylistID: playlistID, Err: err}
	}
	return remote, nil
}

// refreshVideo refetches one video when its metadata or transcript is stale.
// Per-video failures are recorded in res; only cancellation is returned.
func (e *Engine) refreshVideo(ctx context.Context, log zerolog.Logger, videoID string, res *PlaylistResult) error {
	metaAt, transcriptAt, err := e.store.FreshnessTimestamps(ctx, videoID)
	if err != nil {
		log.Warn().Err(err).Msg("read freshness, refetching")
		metaAt, transcriptAt = nil, nil
	}
	now := e.now()
	needMeta := e.fresh.NeedsRefresh(metaAt, now)
	needTranscript := e.fresh.NeedsRefresh(transcriptAt, now)
	if !needMeta && !needTranscript {
		res.Skipped++
		return nil
	}

	if err := e.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}

	var result *youtube.FetchResult
	policy := e.withRetryLog(e.cfg.VideoRetry, log)
	err = retry.Do(ctx, policy, e.classify, func(ctx context.Context) error {
		r, err := e.fetcher.FetchVideo(ctx, videoID, youtube.FetchOptions{Transcript: needTranscript})
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		res.recordFailure(videoID, &VideoFetchError{VideoID: videoID, Err: err})
		log.Warn().Err(err).Msg("video fetch failed")
		return nil
	}

	fetchedAt := e.now()
	video := result.Video
	video.ID = videoID
	video.LastFetchedAt = &fetchedAt
	if err := e.store.UpsertVideo(ctx, video); err != nil {
		res.recordFailure(videoID, &PersistenceError{Op: "save video " + videoID, Err: err})
		log.Error().Err(err).Msg("save video")
		return nil
	}

	if needTranscript {
		switch {
		case result.Transcript != nil:
			t := *result.Transcript
			t.VideoID = videoID
			t.LastFetchedAt = fetchedAt
			saved, err := e.store.UpsertTranscript(ctx, t, transcript.ShouldReplace)
			if err != nil {
				res.recordFailure(videoID, &PersistenceError{Op: "save transcript " + videoID, Err: err})
				log.Error().Err(err).Msg("save transcript")
				return nil
			}
			if saved {
				res.TranscriptsSaved++
			} else {
				res.TranscriptsKept++
				log.Info().Str("language", t.Language).Msg("kept timestamped transcript")
			}
		case errors.Is(result.TranscriptErr, youtube.ErrTranscriptUnavailable):
			log.Debug().Msg("no transcript available")
		case result.TranscriptErr != nil:
			log.Warn().Err(result.TranscriptErr).Msg("transcript fetch failed")
		}
	}

	res.Scraped++
	log.Debug().Bool("metadata_stale", needMeta).Bool("transcript_stale", needTranscript).Msg("video refreshed")
	return nil
}

func (e *Engine) withRetryLog(p retry.Policy, log zerolog.Logger) retry.Policy {
	if p.OnRetry == nil {
		p.OnRetry = func(attempt int, err error, wait time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("retrying")
		}
	}
	return p
}

func (e *Engine) finishRun(ctx context.Context, log zerolog.Logger, run models.SyncRun, res PlaylistResult) {
	finished := res.StartedAt.Add(res.Duration)
	run.FinishedAt = &finished
	run.Status = runStatus(res)
	run.Added = res.Added
	run.Removed = res.Removed
	run.Scraped = res.Scraped
	run.Skipped = res.Skipped
	run.Failed = res.Failed
	run.Error = res.Error
	if err := e.store.FinishSyncRun(ctx, run); err != nil {
		log.Warn().Err(err).Msg("record sync run finish")
	}
}

func (r *PlaylistResult) fail(err error) {
	r.Phase = PhaseFailed
	r.Err = err
}

func runStatus(res PlaylistResult) models.SyncRunStatus {
	switch {
	case res.Phase == PhaseCompleted:
		return models.SyncRunCompleted
	case errors.Is(res.Err, context.Canceled), errors.Is(res.Err, context.DeadlineExceeded):
		return models.SyncRunCancelled
	case errors.Is(res.Err, ErrMembershipFetch):
		return models.SyncRunFailedFetch
	default:
		return models.SyncRunSyncFailed
	}
}
