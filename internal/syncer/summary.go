package syncer

import (
	"time"
)

// Phase is the state of a single playlist sync pass.
type Phase int

const (
	PhasePending Phase = iota
	PhaseFetchingMembership
	PhaseDiffed
	PhaseApplyingDelta
	PhaseSynced
	PhaseRefreshingVideos
	PhaseCompleted
	PhaseFailed
)

var phaseNames = map[Phase]string{
	PhasePending:            "pending",
	PhaseFetchingMembership: "fetching_membership",
	PhaseDiffed:             "diffed",
	PhaseApplyingDelta:      "applying_delta",
	PhaseSynced:             "synced",
	PhaseRefreshingVideos:   "refreshing_videos",
	PhaseCompleted:          "completed",
	PhaseFailed:             "failed",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// MarshalText renders the phase name in JSON.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// VideoFailure records a video that could not be refreshed in a pass.
type VideoFailure struct {
	VideoID string `json:"video_id"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

// PlaylistResult is the outcome of one playlist sync pass.
type PlaylistResult struct {
	PlaylistID       string         `json:"playlist_id"`
	Title            string         `json:"title"`
	RunID            string         `json:"run_id"`
	Phase            Phase          `json:"phase"`
	Err              error          `json:"-"`
	Error            string         `json:"error,omitempty"`
	Added            int            `json:"added"`
	Removed          int            `json:"removed"`
	Scraped          int            `json:"scraped"`
	Skipped          int            `json:"skipped"`
	Failed           int            `json:"failed"`
	TranscriptsSaved int            `json:"transcripts_saved"`
	TranscriptsKept  int            `json:"transcripts_kept"`
	Failures         []VideoFailure `json:"failures,omitempty"`
	StartedAt        time.Time      `json:"started_at"`
	Duration         time.Duration  `json:"duration_ns"`
}

// Succeeded reports whether the pass reached Completed. Individual video
// failures do not make a pass unsuccessful.
func (r PlaylistResult) Succeeded() bool {
	return r.Phase == PhaseCompleted
}

func (r *PlaylistResult) recordFailure(videoID string, err error) {
	r.Failed++
	r.Failures = append(r.Failures, VideoFailure{VideoID: videoID, Message: err.Error(), Err: err})
}

// Summary aggregates a run over several playlists.
type Summary struct {
	RunID     string           `json:"run_id"`
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"duration_ns"`
	Playlists []PlaylistResult `json:"playlists"`
}

// Totals are the aggregate counters of a Summary.
type Totals struct {
	Playlists        int `json:"playlists"`
	Succeeded        int `json:"succeeded"`
	Failed           int `json:"failed"`
	Added            int `json:"added"`
	Removed          int `json:"removed"`
	Scraped          int `json:"scraped"`
	Skipped          int `json:"skipped"`
	VideosFailed     int `json:"videos_failed"`
	TranscriptsSaved int `json:"transcripts_saved"`
	TranscriptsKept  int `json:"transcripts_kept"`
}

// Totals sums the per-playlist counters.
func (s *Summary) Totals() Totals {
	var t Totals
	for _, r := range s.Playlists {
		t.Playlists++
		if r.Succeeded() {
			t.Succeeded++
		} else {
			t.Failed++
		}
		t.Added += r.Added
		t.Removed += r.Removed
		t.Scraped += r.Scraped
		t.Skipped += r.Skipped
		t.VideosFailed += r.Failed
		t.TranscriptsSaved += r.TranscriptsSaved
		t.TranscriptsKept += r.TranscriptsKept
	}
	return t
}

// FailedPlaylists returns the passes that did not complete.
func (s *Summary) FailedPlaylists() []PlaylistResult {
	var failed []PlaylistResult
	for _, r := range s.Playlists {
		if !r.Succeeded() {
			failed = append(failed, r)
		}
	}
	return failed
}
