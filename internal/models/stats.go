package models

import "time"

// ArchiveStats summarises the whole archive.
type ArchiveStats struct {
	Playlists             int            `json:"playlists"`
	Videos                int            `json:"videos"`
	VideosWithTranscripts int            `json:"videos_with_transcripts"`
	CrossLinkedVideos     int            `json:"cross_linked_videos"`
	LastUpdate            *time.Time     `json:"last_update,omitempty"`
	TopChannels           []ChannelCount `json:"top_channels"`
}

// ChannelCount is the number of archived videos by one author.
type ChannelCount struct {
	Author string `json:"author"`
	Videos int    `json:"videos"`
}

// CrossLinkedVideo is a video that belongs to more than one playlist.
type CrossLinkedVideo struct {
	Video
	PlaylistCount int `json:"playlist_count"`
}
