package youtube

import (
	"context"
	"encoding/json"
	"fmt"

	"ytshelf/internal/models"
)

// ytdlpPlaylist represents yt-dlp's flat JSON output for a playlist or tab.
type ytdlpPlaylist struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Uploader   string       `json:"uploader"`
	ChannelID  string       `json:"channel_id"`
	WebpageURL string       `json:"webpage_url"`
	Entries    []ytdlpEntry `json:"entries"`
}

// ytdlpEntry is one flat entry: a video in a playlist, or a playlist in a
// channel's playlists tab.
type ytdlpEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	IEKey string `json:"ie_key"`
}

// ListPlaylistMembers returns the video ids of a playlist in remote order.
// An existing but empty playlist yields an empty, non-nil slice; any failure
// yields an error and never an empty slice.
func (c *Client) ListPlaylistMembers(ctx context.Context, playlistID string) ([]string, error) {
	out, err := c.ytdlp(ctx, ErrPlaylistNotFound,
		"--flat-playlist", "-J", "--no-warnings", PlaylistURL(playlistID))
	if err != nil {
		return nil, &FetchError{Op: "list playlist", ID: playlistID, Err: err}
	}

	ids, err := parsePlaylistMembers(out)
	if err != nil {
		return nil, &FetchError{Op: "list playlist", ID: playlistID, Err: err}
	}
	return ids, nil
}

func parsePlaylistMembers(data []byte) ([]string, error) {
	var playlist ytdlpPlaylist
	if err := json.Unmarshal(data, &playlist); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}

	ids := make([]string, 0, len(playlist.Entries))
	for _, entry := range playlist.Entries {
		id := coalesce(entry.ID, ExtractVideoID(entry.URL))
		if id == "" {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ListChannelPlaylists discovers the public playlists of a channel.
func (c *Client) ListChannelPlaylists(ctx context.Context, channel string) ([]models.Playlist, error) {
	channelURL := ResolveChannelURL(channel)
	out, err := c.ytdlp(ctx, ErrChannelNotFound, "--flat-playlist", "-J", "--no-warnings", channelURL)
	if err != nil {
		return nil, &FetchError{Op: "list channel", ID: channel, Err: err}
	}

	playlists, err := parseChannelPlaylists(out)
	if err != nil {
		return nil, &FetchError{Op: "list channel", ID: channel, Err: err}
	}
	return playlists, nil
}

func parseChannelPlaylists(data []byte) ([]models.Playlist, error) {
	var tab ytdlpPlaylist
	if err := json.Unmarshal(data, &tab); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}

	playlists := make([]models.Playlist, 0, len(tab.Entries))
	seen := make(map[string]bool, len(tab.Entries))
	for _, entry := range tab.Entries {
		// Channel tabs can mix in video entries; only playlists count.
		if entry.ID == "" || IsVideoID(entry.ID) || seen[entry.ID] {
			continue
		}
		seen[entry.ID] = true
		playlists = append(playlists, models.Playlist{
			ID:    entry.ID,
			Title: coalesce(entry.Title, entry.ID),
			URL:   PlaylistURL(entry.ID),
		})
	}
	return playlists, nil
}
