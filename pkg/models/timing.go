package models

import "time"

// TimingParameters is advisory request metadata derived from headers. It only decides
// whether a computed response is worth caching.
type TimingParameters struct {
	Deadline      *time.Time
	TransactionID string
	AttemptNumber *int
	MaxAttempts   *int
}

// Expired reports whether the client has given up on the request, allowing for skew.
// Without a deadline the request never expires.
func (t TimingParameters) Expired(now time.Time, skew time.Duration) bool {
	if t.Deadline == nil {
		return false
	}
	return !now.Before(t.Deadline.Add(-skew))
}
