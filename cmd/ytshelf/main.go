package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"ytshelf/internal/archive"
	"ytshelf/internal/config"
	"ytshelf/internal/logging"
	"ytshelf/internal/models"
	"ytshelf/internal/store"
	"ytshelf/internal/syncer"
	"ytshelf/internal/youtube"
)

const usage = `Usage: ytshelf <command> [flags]

Commands:
  sync [-playlist ID]                 sync every stored playlist, or one
  discover <channel>                  add a channel's playlists (@handle, UC id or URL)
  import playlists <file|->           import playlists from a JSON array
  import transcripts [-remove] <dir>  import *.txt transcript files
  export playlists [-o FILE]          export playlists and their video ids as JSON
  export transcripts -playlist ID [-dir DIR]
                                      write one transcript file per playlist video
  remove playlist|video <id>          delete a playlist or video and everything hanging off it
  serve                               run the JSON API
  migrate up|down                     apply or roll back the schema

Configuration is read from the environment and an optional .env file.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	logging.SetGlobalLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logger.Error().Err(err).Str("command", os.Args[1]).Msg("command failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger, command string, args []string) error {
	if command == "migrate" {
		return runMigrate(cfg, log, args)
	}
	if command == "help" || command == "-h" || command == "--help" {
		fmt.Print(usage)
		return nil
	}

	dataStore, closeDB, err := openDatabase(ctx, cfg.Database.URL, log)
	if err != nil {
		return err
	}
	defer closeDB()

	switch command {
	case "sync":
		return runSync(ctx, cfg, log, dataStore, args)
	case "discover":
		return runDiscover(ctx, cfg, log, dataStore, args)
	case "import":
		return runImport(ctx, log, dataStore, args)
	case "export":
		return runExport(ctx, log, dataStore, args)
	case "remove":
		return runRemove(ctx, log, dataStore, args)
	case "serve":
		return runServe(ctx, cfg, log, dataStore)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func newEngine(cfg *config.Config, log zerolog.Logger, dataStore *store.Store) *syncer.Engine {
	yt := newYouTubeClient(cfg)
	return syncer.New(dataStore, yt, yt, syncConfig(cfg), log)
}

func runSync(ctx context.Context, cfg *config.Config, log zerolog.Logger, dataStore *store.Store, args []string) error {
	fs := flag.NewFlagSet("sync", flag.ContinueOnError)
	playlistID := fs.String("playlist", "", "sync only this playlist id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	engine := newEngine(cfg, log, dataStore)
	var summary *syncer.Summary
	if *playlistID != "" {
		p, err := dataStore.GetPlaylist(ctx, *playlistID)
		if err != nil {
			return fmt.Errorf("load playlist %s: %w", *playlistID, err)
		}
		summary = engine.RunPlaylists(ctx, []models.Playlist{p})
	} else {
		var err error
		if summary, err = engine.Run(ctx); err != nil {
			return err
		}
	}

	printSummary(os.Stdout, summary)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if failed := summary.FailedPlaylists(); len(failed) > 0 {
		return fmt.Errorf("%d of %d playlists failed to sync", len(failed), len(summary.Playlists))
	}
	return nil
}

func printSummary(w io.Writer, s *syncer.Summary) {
	for _, r := range s.Playlists {
		status := r.Phase.String()
		if r.Error != "" {
			status += ": " + r.Error
		}
		fmt.Fprintf(w, "%-40s +%d -%d scraped=%d skipped=%d failed=%d  %s\n",
			r.Title, r.Added, r.Removed, r.Scraped, r.Skipped, r.Failed, status)
		for _, f := range r.Failures {
			fmt.Fprintf(w, "    %s: %s\n", f.VideoID, f.Message)
		}
	}
	t := s.Totals()
	fmt.Fprintf(w, "%d playlists (%d ok, %d failed), %d videos scraped, %d fresh, %d failed, %d transcripts saved, %d kept\n",
		t.Playlists, t.Succeeded, t.Failed, t.Scraped, t.Skipped, t.VideosFailed, t.TranscriptsSaved, t.TranscriptsKept)
}

func runDiscover(ctx context.Context, cfg *config.Config, log zerolog.Logger, dataStore *store.Store, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: ytshelf discover <channel>")
	}
	found, err := archive.New(dataStore, log).Discover(ctx, newYouTubeClient(cfg), args[0])
	if err != nil {
		return err
	}
	for _, p := range found {
		fmt.Printf("%s  %s\n", p.ID, p.Title)
	}
	fmt.Printf("%d playlists saved\n", len(found))
	return nil
}

func runImport(ctx context.Context, log zerolog.Logger, dataStore *store.Store, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: ytshelf import playlists|transcripts ...")
	}
	arc := archive.New(dataStore, log)

	switch args[0] {
	case "playlists":
		if len(args) != 2 {
			return errors.New("usage: ytshelf import playlists <file|->")
		}
		var in io.Reader = os.Stdin
		if args[1] != "-" {
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open playlists file: %w", err)
			}
			defer f.Close()
			in = f
		}
		report, err := arc.ImportPlaylists(ctx, in)
		if err != nil {
			return err
		}
		fmt.Printf("%d playlists imported, %d skipped\n", report.Inserted, report.Skipped)
		return nil

	case "transcripts":
		fs := flag.NewFlagSet("import transcripts", flag.ContinueOnError)
		remove := fs.Bool("remove", false, "delete files once imported")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return errors.New("usage: ytshelf import transcripts [-remove] <dir>")
		}
		report, err := arc.ImportTranscripts(ctx, fs.Arg(0), archive.ImportOptions{RemoveProcessed: *remove})
		if err != nil {
			return err
		}
		fmt.Printf("%d transcripts imported, %d kept existing, %d failed\n", report.Imported, report.Kept, report.Failed)
		for _, f := range report.Failures {
			fmt.Printf("    %s\n", f)
		}
		return nil

	default:
		return fmt.Errorf("unknown import target %q", args[0])
	}
}

func runExport(ctx context.Context, log zerolog.Logger, dataStore *store.Store, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: ytshelf export playlists|transcripts ...")
	}
	arc := archive.New(dataStore, log)

	switch args[0] {
	case "playlists":
		fs := flag.NewFlagSet("export playlists", flag.ContinueOnError)
		output := fs.String("o", "", "write to FILE instead of stdout")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		var out io.Writer = os.Stdout
		if *output != "" {
			f, err := os.Create(*output)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			defer f.Close()
			out = f
		}
		n, err := arc.ExportPlaylists(ctx, out)
		if err != nil {
			return err
		}
		if *output != "" {
			fmt.Printf("%d playlists exported to %s\n", n, *output)
		}
		return nil

	case "transcripts":
		fs := flag.NewFlagSet("export transcripts", flag.ContinueOnError)
		playlistID := fs.String("playlist", "", "playlist id (required)")
		dir := fs.String("dir", "", "output directory (default transcripts_<id>)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *playlistID == "" {
			return errors.New("usage: ytshelf export transcripts -playlist ID [-dir DIR]")
		}
		if *dir == "" {
			*dir = "transcripts_" + *playlistID
		}
		n, err := arc.ExportTranscripts(ctx, *playlistID, *dir)
		if err != nil {
			return err
		}
		fmt.Printf("%d transcripts exported to %s\n", n, *dir)
		return nil

	default:
		return fmt.Errorf("unknown export target %q", args[0])
	}
}

func runRemove(ctx context.Context, log zerolog.Logger, dataStore *store.Store, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: ytshelf remove playlist|video <id>")
	}
	id := args[1]

	var err error
	switch args[0] {
	case "playlist":
		err = dataStore.DeletePlaylist(ctx, id)
	case "video":
		videoID := youtube.ExtractVideoID(id)
		if videoID == "" {
			return fmt.Errorf("not a video id or url: %q", id)
		}
		err = dataStore.DeleteVideo(ctx, videoID)
	default:
		return fmt.Errorf("unknown remove target %q", args[0])
	}
	if err != nil {
		return err
	}
	log.Info().Str("kind", args[0]).Str("id", id).Msg("removed")
	return nil
}

func runServe(ctx context.Context, cfg *config.Config, log zerolog.Logger, dataStore *store.Store) error {
	handler := newHTTPHandler(cfg, dataStore, newEngine(cfg, log, dataStore), log)
	return serveHTTP(ctx, cfg.Server.Addr(), handler, log)
}

func runMigrate(cfg *config.Config, log zerolog.Logger, args []string) error {
	if len(args) != 1 || (args[0] != "up" && args[0] != "down") {
		return errors.New("usage: ytshelf migrate up|down")
	}
	if err := store.Migrate(cfg.Database.URL, store.Direction(args[0])); err != nil {
		return err
	}
	log.Info().Str("direction", args[0]).Msg("migrations applied")
	return nil
}
