// Package archive moves playlists and transcripts in and out of the store:
// JSON playlist lists, plain-text transcript files and channel discovery.
package archive

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ytshelf/internal/models"
	"ytshelf/internal/store"
)

// Store captures the persistence needs for imports and exports.
type Store interface {
	ListPlaylists(ctx context.Context) ([]models.Playlist, error)
	GetPlaylist(ctx context.Context, id string) (models.Playlist, error)
	CreatePlaylist(ctx context.Context, p models.Playlist) error
	UpsertPlaylist(ctx context.Context, p models.Playlist) error
	ListMemberships(ctx context.Context, playlistID string) ([]models.PlaylistMembership, error)
	ListPlaylistVideos(ctx context.Context, playlistID string) ([]models.PlaylistVideo, error)
	EnsureVideo(ctx context.Context, v models.Video) (bool, error)
	ListTranscripts(ctx context.Context, videoID string) ([]models.Transcript, error)
	UpsertTranscript(ctx context.Context, t models.Transcript, allow store.ReplacePolicy) (bool, error)
}

// ChannelLister lists the public playlists of a channel.
type ChannelLister interface {
	ListChannelPlaylists(ctx context.Context, channel string) ([]models.Playlist, error)
}

// Archive runs import, export and discovery against a Store.
type Archive struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time
}

// New constructs an Archive.
func New(store Store, log zerolog.Logger) *Archive {
	return &Archive{store: store, log: log, now: time.Now}
}
