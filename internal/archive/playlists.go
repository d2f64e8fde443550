package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"ytshelf/internal/models"
	"ytshelf/internal/store"
	"ytshelf/internal/youtube"
)

// playlistEntry is one element of an imported playlist list. Either key may
// carry the id.
type playlistEntry struct {
	PlaylistID string `json:"playlist_id"`
	ID         string `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
}

// ImportReport counts the outcome of a playlist import.
type ImportReport struct {
	Inserted int
	Skipped  int
}

// ImportPlaylists reads a JSON array of playlists and inserts the new ones.
// Entries without id or title are skipped, as are playlists already stored;
// stored playlists are never modified.
func (a *Archive) ImportPlaylists(ctx context.Context, r io.Reader) (ImportReport, error) {
	var entries []playlistEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return ImportReport{}, fmt.Errorf("decode playlists: %w", err)
	}

	var report ImportReport
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		id := strings.TrimSpace(entry.PlaylistID)
		if id == "" {
			id = strings.TrimSpace(entry.ID)
		}
		title := strings.TrimSpace(entry.Title)
		if id == "" || title == "" {
			a.log.Warn().Str("playlist_id", id).Msg("skipping playlist without id or title")
			report.Skipped++
			continue
		}
		url := strings.TrimSpace(entry.URL)
		if url == "" {
			url = youtube.PlaylistURL(id)
		}

		err := a.store.CreatePlaylist(ctx, models.Playlist{ID: id, Title: title, URL: url})
		switch {
		case errors.Is(err, store.ErrPlaylistExists):
			report.Skipped++
		case err != nil:
			return report, fmt.Errorf("import playlist %s: %w", id, err)
		default:
			a.log.Info().Str("playlist_id", id).Str("title", title).Msg("imported playlist")
			report.Inserted++
		}
	}
	return report, nil
}

// exportedPlaylist is the JSON shape written by ExportPlaylists.
type exportedPlaylist struct {
	PlaylistID string   `json:"playlist_id"`
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	VideoIDs   []string `json:"video_ids"`
}

// ExportPlaylists writes every playlist with its member ids in position
// order as an indented JSON array sorted by title.
func (a *Archive) ExportPlaylists(ctx context.Context, w io.Writer) (int, error) {
	list, err := a.store.ListPlaylists(ctx)
	if err != nil {
		return 0, fmt.Errorf("list playlists: %w", err)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return strings.ToLower(list[i].Title) < strings.ToLower(list[j].Title)
	})

	out := make([]exportedPlaylist, 0, len(list))
	for _, p := range list {
		members, err := a.store.ListMemberships(ctx, p.ID)
		if err != nil {
			return 0, fmt.Errorf("list members of %s: %w", p.ID, err)
		}
		sort.SliceStable(members, func(i, j int) bool { return members[i].Position < members[j].Position })
		ids := make([]string, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.VideoID)
		}
		out = append(out, exportedPlaylist{PlaylistID: p.ID, Title: p.Title, URL: p.URL, VideoIDs: ids})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return 0, fmt.Errorf("encode playlists: %w", err)
	}
	return len(out), nil
}

// Discover upserts every playlist a channel publishes and returns them.
func (a *Archive) Discover(ctx context.Context, lister ChannelLister, channel string) ([]models.Playlist, error) {
	found, err := lister.ListChannelPlaylists(ctx, channel)
	if err != nil {
		return nil, fmt.Errorf("list channel playlists: %w", err)
	}
	for _, p := range found {
		if err := a.store.UpsertPlaylist(ctx, p); err != nil {
			return nil, fmt.Errorf("save playlist %s: %w", p.ID, err)
		}
		a.log.Info().Str("playlist_id", p.ID).Str("title", p.Title).Msg("discovered playlist")
	}
	return found, nil
}
