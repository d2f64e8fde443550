package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"ytshelf/internal/models"
	"ytshelf/internal/transcript"
	"ytshelf/internal/youtube"
)

// ImportedLanguage is the language recorded for imported transcript files.
const ImportedLanguage = "en"

// TranscriptReport counts the outcome of a transcript import.
type TranscriptReport struct {
	Imported int
	// Kept counts files whose plain text lost to a stored time-coded transcript.
	Kept     int
	Failed   int
	Failures []string
}

// ImportOptions tunes ImportTranscripts.
type ImportOptions struct {
	// RemoveProcessed deletes each file once it has been stored.
	RemoveProcessed bool
}

// ImportTranscripts loads every *.txt transcript file in dir. A file that
// fails to parse or save is reported and skipped.
func (a *Archive) ImportTranscripts(ctx context.Context, dir string, opts ImportOptions) (TranscriptReport, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return TranscriptReport{}, fmt.Errorf("list transcript files: %w", err)
	}
	sort.Strings(paths)

	var report TranscriptReport
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		log := a.log.With().Str("file", filepath.Base(path)).Logger()

		saved, err := a.importTranscriptFile(ctx, path)
		if err != nil {
			log.Warn().Err(err).Msg("transcript import failed")
			report.Failed++
			report.Failures = append(report.Failures, fmt.Sprintf("%s: %v", filepath.Base(path), err))
			continue
		}
		if saved {
			report.Imported++
		} else {
			report.Kept++
			log.Info().Msg("kept stored time-coded transcript")
		}

		if opts.RemoveProcessed {
			if err := os.Remove(path); err != nil {
				log.Warn().Err(err).Msg("remove processed file")
			}
		}
	}
	return report, nil
}

func (a *Archive) importTranscriptFile(ctx context.Context, path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open transcript file: %w", err)
	}
	defer f.Close()

	parsed, err := transcript.ParseFile(f)
	if err != nil {
		return false, err
	}

	video := models.Video{ID: parsed.VideoID, Title: parsed.Title, URL: parsed.URL}
	if _, err := a.store.EnsureVideo(ctx, video); err != nil {
		return false, fmt.Errorf("ensure video %s: %w", parsed.VideoID, err)
	}

	t := models.Transcript{
		VideoID:       parsed.VideoID,
		Language:      ImportedLanguage,
		Text:          parsed.Body,
		LastFetchedAt: a.now(),
	}
	saved, err := a.store.UpsertTranscript(ctx, t, transcript.ShouldReplace)
	if err != nil {
		return false, fmt.Errorf("save transcript %s: %w", parsed.VideoID, err)
	}
	return saved, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// sanitizeFilename makes a title safe to use inside a file name.
func sanitizeFilename(title string) string {
	safe := unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(title), "_")
	if r := []rune(safe); len(r) > 100 {
		safe = string(r[:100])
	}
	if safe == "" {
		return "untitled"
	}
	return safe
}

// ExportTranscripts writes one file per playlist video that has a stored
// transcript into dir, in the format ImportTranscripts reads. It returns the
// number of files written.
func (a *Archive) ExportTranscripts(ctx context.Context, playlistID, dir string) (int, error) {
	if _, err := a.store.GetPlaylist(ctx, playlistID); err != nil {
		return 0, err
	}
	members, err := a.store.ListPlaylistVideos(ctx, playlistID)
	if err != nil {
		return 0, fmt.Errorf("list playlist videos: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create export dir: %w", err)
	}

	written := 0
	for _, m := range members {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		transcripts, err := a.store.ListTranscripts(ctx, m.Video.ID)
		if err != nil {
			return written, fmt.Errorf("list transcripts of %s: %w", m.Video.ID, err)
		}
		t, ok := preferredTranscript(transcripts)
		if !ok {
			continue
		}

		title := m.Video.Title
		if title == "" {
			title = "Video " + m.Video.ID
		}
		name := fmt.Sprintf("%s_%s.txt", m.Video.ID, sanitizeFilename(title))
		if err := writeTranscriptFile(filepath.Join(dir, name), transcript.File{
			Title:   title,
			URL:     youtube.VideoURL(m.Video.ID),
			VideoID: m.Video.ID,
			Body:    t.Text,
		}); err != nil {
			return written, err
		}
		written++
	}
	a.log.Info().Str("playlist_id", playlistID).Int("files", written).Str("dir", dir).Msg("exported transcripts")
	return written, nil
}

// preferredTranscript picks the imported language when present, else the
// first stored one.
func preferredTranscript(ts []models.Transcript) (models.Transcript, bool) {
	if len(ts) == 0 {
		return models.Transcript{}, false
	}
	for _, t := range ts {
		if t.Language == ImportedLanguage {
			return t, true
		}
	}
	return ts[0], true
}

func writeTranscriptFile(path string, f transcript.File) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := transcript.WriteFile(out, f); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
