package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"ytshelf/internal/app/playlists"
	"ytshelf/internal/app/videos"
	"ytshelf/internal/config"
	"ytshelf/internal/freshness"
	"ytshelf/internal/httpapi"
	"ytshelf/internal/store"
	"ytshelf/internal/syncer"
)

func newHTTPHandler(cfg *config.Config, dataStore *store.Store, engine *syncer.Engine, log zerolog.Logger) http.Handler {
	playlistSvc := playlists.New(dataStore, engine)
	videoSvc := videos.New(dataStore, freshness.New(cfg.Sync.RefreshThreshold))
	return httpapi.New(playlistSvc, videoSvc, log, httpapi.WithAllowedOrigins(cfg.Server.AllowedOrigins)).Routes()
}

// serveHTTP runs srv until ctx is cancelled, then shuts it down gracefully.
func serveHTTP(ctx context.Context, addr string, handler http.Handler, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// A manual sync holds the response open for the whole pass.
		WriteTimeout: 30 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msgf("API available at http://%s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown failed")
		_ = srv.Close()
	}
	log.Info().Msg("server stopped")
	return nil
}
