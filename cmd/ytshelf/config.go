package main

import (
	"ytshelf/internal/config"
	"ytshelf/internal/retry"
	"ytshelf/internal/syncer"
	"ytshelf/internal/youtube"
)

// syncConfig maps the environment settings onto the engine's tuning.
func syncConfig(cfg *config.Config) syncer.Config {
	sc := syncer.DefaultConfig()
	sc.RefreshThreshold = cfg.Sync.RefreshThreshold
	sc.VideoDelay = cfg.Sync.VideoFetchDelay
	sc.MembershipRetry.MaxAttempts = cfg.Sync.PlaylistFetchAttempts
	sc.VideoRetry = retry.Policy{
		MaxAttempts: cfg.Sync.VideoFetchAttempts,
		Backoff:     retry.Constant(cfg.Sync.VideoRetryBackoff),
	}
	return sc
}

func newYouTubeClient(cfg *config.Config) *youtube.Client {
	return youtube.NewClient(cfg.YouTube.YtdlpPath, cfg.YouTube.YtdlpTimeout, cfg.YouTube.TranscriptLanguages)
}
