// Package freshness decides when stored remote data is due for a refetch.
package freshness

import "time"

// DefaultThreshold is the age after which metadata or a transcript is refetched.
const DefaultThreshold = 7 * 24 * time.Hour

// Policy is an age threshold applied independently to each timestamp.
type Policy struct {
	Threshold time.Duration
}

// New returns a Policy, falling back to DefaultThreshold for non-positive values.
func New(threshold time.Duration) Policy {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Policy{Threshold: threshold}
}

// NeedsRefresh reports whether data fetched at last is stale at now. A nil
// timestamp means the data was never fetched. A timestamp in the future
// (clock skew) is treated as fresh.
func (p Policy) NeedsRefresh(last *time.Time, now time.Time) bool {
	if last == nil {
		return true
	}
	return now.Sub(*last) >= p.Threshold
}
