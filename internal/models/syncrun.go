package models

import "time"

// SyncRunStatus describes where a recorded sync pass ended.
type SyncRunStatus string

const (
	SyncRunStarted     SyncRunStatus = "started"
	SyncRunFailedFetch SyncRunStatus = "failed_fetch"
	SyncRunSyncFailed  SyncRunStatus = "sync_failed"
	SyncRunCompleted   SyncRunStatus = "completed"
	SyncRunCancelled   SyncRunStatus = "cancelled"
)

// SyncRun records a single sync pass over one playlist.
type SyncRun struct {
	ID         string        `json:"id" db:"run_id"`
	PlaylistID string        `json:"playlist_id" db:"playlist_id"`
	StartedAt  time.Time     `json:"started_at" db:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty" db:"finished_at"`
	Status     SyncRunStatus `json:"status" db:"status"`
	Added      int           `json:"added" db:"added"`
	Removed    int           `json:"removed" db:"removed"`
	Scraped    int           `json:"scraped" db:"scraped"`
	Skipped    int           `json:"skipped" db:"skipped"`
	Failed     int           `json:"failed" db:"failed"`
	Error      string        `json:"error,omitempty" db:"error"`
}
