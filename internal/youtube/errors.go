package youtube

import (
	"context"
	"errors"
)

// Sentinel errors for remote operations.
var (
	ErrPlaylistNotFound      = errors.New("youtube: playlist not found")
	ErrChannelNotFound       = errors.New("youtube: channel not found")
	ErrVideoUnavailable      = errors.New("youtube: video unavailable")
	ErrTranscriptUnavailable = errors.New("youtube: no transcript available")
	ErrRateLimited           = errors.New("youtube: rate limited")
	ErrNetworkTimeout        = errors.New("youtube: network timeout")
	ErrYtdlpNotInstalled     = errors.New("youtube: yt-dlp not installed")
)

// FetchError wraps errors with the operation and the remote id involved.
type FetchError struct {
	Op  string // "list playlist", "fetch video", "fetch captions", "list channel"
	ID  string
	Err error
}

func (e *FetchError) Error() string {
	return "youtube: " + e.Op + " " + e.ID + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsRetryable reports whether a remote failure may succeed on another attempt.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, ErrPlaylistNotFound),
		errors.Is(err, ErrChannelNotFound),
		errors.Is(err, ErrVideoUnavailable),
		errors.Is(err, ErrTranscriptUnavailable),
		errors.Is(err, ErrYtdlpNotInstalled):
		return false
	}
	return true
}
