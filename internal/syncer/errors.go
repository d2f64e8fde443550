package syncer

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error the engine reports matches exactly one of them
// with errors.Is.
var (
	ErrMembershipFetch = errors.New("membership fetch failed")
	ErrVideoFetch      = errors.New("video fetch failed")
	ErrPersistence     = errors.New("persistence failed")
)

// MembershipFetchError means the remote listing of a playlist could not be
// obtained. The playlist's stored state is untouched.
type MembershipFetchError struct {
	PlaylistID string
	Err        error
}

func (e *MembershipFetchError) Error() string {
	return fmt.Sprintf("fetch members of playlist %s: %v", e.PlaylistID, e.Err)
}

func (e *MembershipFetchError) Unwrap() error { return e.Err }

func (e *MembershipFetchError) Is(target error) bool { return target == ErrMembershipFetch }

// VideoFetchError means one video could not be fetched after retries.
type VideoFetchError struct {
	VideoID string
	Err     error
}

func (e *VideoFetchError) Error() string {
	return fmt.Sprintf("fetch video %s: %v", e.VideoID, e.Err)
}

func (e *VideoFetchError) Unwrap() error { return e.Err }

func (e *VideoFetchError) Is(target error) bool { return target == ErrVideoFetch }

// PersistenceError means a storage read or write failed. A failed batch
// write has been rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
