package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"

	"ytshelf/internal/retry"
	"ytshelf/internal/store"
)

// openDatabase establishes a database connection, retrying until the instance
// responds, and brings the schema up to date.
func openDatabase(ctx context.Context, databaseURL string, log zerolog.Logger) (*store.Store, func() error, error) {
	dialect := store.DialectFor(databaseURL)
	db, err := sql.Open(dialect.DriverName(), store.DataSourceName(databaseURL))
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if dialect == store.SQLite {
		// A single writer connection avoids SQLITE_BUSY between pool members.
		db.SetMaxOpenConns(1)
	}

	const pingTimeout = 5 * time.Second
	policy := retry.Policy{
		MaxAttempts: 8,
		Backoff:     retry.Exponential(500*time.Millisecond, 2, 5*time.Second),
		OnRetry: func(attempt int, err error, wait time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("database not ready")
		},
	}
	err = retry.Do(ctx, policy, retry.IsRetryable, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return db.PingContext(pingCtx)
	})
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	if err := store.Migrate(databaseURL, store.Up); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	log.Debug().Str("dialect", dialect.String()).Msg("database ready")
	return store.New(db, dialect), db.Close, nil
}
