package models

import "time"

// Playlist is a tracked YouTube playlist.
type Playlist struct {
	ID           string     `json:"id" db:"playlist_id"`
	Title        string     `json:"title" db:"title"`
	URL          string     `json:"url" db:"url"`
	ItemCount    *int       `json:"item_count,omitempty" db:"item_count"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty" db:"last_synced_at"`
}

// PlaylistMembership links a video to a playlist at a 1-based position.
type PlaylistMembership struct {
	PlaylistID string `json:"playlist_id" db:"playlist_id"`
	VideoID    string `json:"video_id" db:"video_id"`
	Position   int    `json:"position" db:"position"`
}

// PlaylistVideo is a membership row joined with its video.
type PlaylistVideo struct {
	Position int   `json:"position"`
	Video    Video `json:"video"`
}

// PlaylistWithVideos bundles a playlist and its ordered members.
type PlaylistWithVideos struct {
	Playlist
	Videos []PlaylistVideo `json:"videos"`
}

// MembershipDelta is the set of membership changes applied to one playlist in
// a single transaction.
type MembershipDelta struct {
	PlaylistID string
	// Add holds new memberships. Videos without a row get a stub first.
	Add []PlaylistMembership
	// Reposition holds retained memberships whose position changed.
	Reposition []PlaylistMembership
	// Remove lists video ids whose membership is deleted.
	Remove []string
}

// Empty reports whether applying the delta would change nothing.
func (d MembershipDelta) Empty() bool {
	return len(d.Add) == 0 && len(d.Reposition) == 0 && len(d.Remove) == 0
}
