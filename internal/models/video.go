package models

import "time"

// Video holds the metadata captured for a single YouTube video.
type Video struct {
	ID              string     `json:"id" db:"video_id"`
	Title           string     `json:"title" db:"title"`
	Description     string     `json:"description,omitempty" db:"description"`
	PublishDate     string     `json:"publish_date,omitempty" db:"publish_date"` // YYYY-MM-DD
	DurationSeconds int        `json:"duration_seconds,omitempty" db:"duration_seconds"`
	ViewCount       int64      `json:"view_count,omitempty" db:"view_count"`
	Author          string     `json:"author,omitempty" db:"author"`
	ChannelID       string     `json:"channel_id,omitempty" db:"channel_id"`
	ThumbnailURL    string     `json:"thumbnail_url,omitempty" db:"thumbnail_url"`
	URL             string     `json:"url" db:"video_url"`
	LastFetchedAt   *time.Time `json:"last_fetched_at,omitempty" db:"last_fetched_at"`
}

// Transcript is the text of one caption track for a video.
type Transcript struct {
	VideoID       string    `json:"video_id" db:"video_id"`
	Language      string    `json:"language" db:"language"`
	Text          string    `json:"text" db:"transcript"`
	LastFetchedAt time.Time `json:"last_fetched_at" db:"last_fetched_at"`
}
