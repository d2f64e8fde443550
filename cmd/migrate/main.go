package main

import (
	"fmt"
	"os"

	"ytshelf/internal/config"
	"ytshelf/internal/logging"
	"ytshelf/internal/store"
)

func main() {
	if len(os.Args) != 2 || (os.Args[1] != "up" && os.Args[1] != "down") {
		fmt.Fprintln(os.Stderr, "Usage: migrate [up|down]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	direction := store.Direction(os.Args[1])
	if err := store.Migrate(cfg.Database.URL, direction); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	if direction == store.Up {
		log.Info().Msg("Migrations applied successfully")
	} else {
		log.Info().Msg("Migrations rolled back successfully")
	}
}
