package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ytshelf/internal/models"
)

// FetchOptions selects what FetchVideo retrieves besides metadata.
type FetchOptions struct {
	// Transcript requests the caption track download.
	Transcript bool
}

// FetchResult is the outcome of a single remote video fetch. Metadata is
// always set. When a transcript was requested, either Transcript or
// TranscriptErr is set; TranscriptErr is ErrTranscriptUnavailable when the
// video simply has no captions.
type FetchResult struct {
	Video         models.Video
	Transcript    *models.Transcript
	TranscriptErr error
}

// ytdlpVideo is the subset of `yt-dlp -J <video>` output we keep.
type ytdlpVideo struct {
	ID                string                    `json:"id"`
	Title             string                    `json:"title"`
	Description       string                    `json:"description"`
	UploadDate        string                    `json:"upload_date"` // YYYYMMDD
	Duration          float64                   `json:"duration"`
	ViewCount         int64                     `json:"view_count"`
	Uploader          string                    `json:"uploader"`
	Channel           string                    `json:"channel"`
	ChannelID         string                    `json:"channel_id"`
	Thumbnail         string                    `json:"thumbnail"`
	WebpageURL        string                    `json:"webpage_url"`
	Subtitles         map[string][]captionTrack `json:"subtitles"`
	AutomaticCaptions map[string][]captionTrack `json:"automatic_captions"`
}

// FetchVideo retrieves metadata and, when opts asks for it, the best
// transcript for a video: one yt-dlp call plus one caption download. A
// transcript failure never fails the whole fetch.
func (c *Client) FetchVideo(ctx context.Context, videoID string, opts FetchOptions) (*FetchResult, error) {
	out, err := c.ytdlp(ctx, ErrVideoUnavailable,
		"-J", "--no-warnings", "--skip-download", VideoURL(videoID))
	if err != nil {
		return nil, &FetchError{Op: "fetch video", ID: videoID, Err: err}
	}

	var raw ytdlpVideo
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, &FetchError{Op: "fetch video", ID: videoID, Err: fmt.Errorf("parse yt-dlp output: %w", err)}
	}
	if raw.ID == "" {
		raw.ID = videoID
	}

	now := time.Now().UTC()
	result := &FetchResult{Video: raw.toVideo(now)}
	if !opts.Transcript {
		return result, nil
	}

	track, lang, ok := selectCaptionTrack(raw.Subtitles, raw.AutomaticCaptions, c.languages())
	if !ok {
		result.TranscriptErr = ErrTranscriptUnavailable
		return result, nil
	}

	text, err := c.fetchCaptions(ctx, track.URL)
	switch {
	case errors.Is(err, ErrTranscriptUnavailable) || (err == nil && text == ""):
		result.TranscriptErr = ErrTranscriptUnavailable
	case err != nil:
		result.TranscriptErr = &FetchError{Op: "fetch captions", ID: videoID, Err: err}
	default:
		result.Transcript = &models.Transcript{
			VideoID:       raw.ID,
			Language:      lang,
			Text:          text,
			LastFetchedAt: now,
		}
	}
	return result, nil
}

func (v ytdlpVideo) toVideo(fetchedAt time.Time) models.Video {
	return models.Video{
		ID:              v.ID,
		Title:           v.Title,
		Description:     v.Description,
		PublishDate:     formatUploadDate(v.UploadDate),
		DurationSeconds: int(v.Duration),
		ViewCount:       v.ViewCount,
		Author:          coalesce(v.Uploader, v.Channel),
		ChannelID:       v.ChannelID,
		ThumbnailURL:    v.Thumbnail,
		URL:             coalesce(v.WebpageURL, VideoURL(v.ID)),
		LastFetchedAt:   &fetchedAt,
	}
}

// formatUploadDate converts yt-dlp's YYYYMMDD into YYYY-MM-DD.
func formatUploadDate(s string) string {
	t, err := time.Parse("20060102", s)
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}
