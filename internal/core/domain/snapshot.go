package domain

import "time"

// SnapshotError is the user-visible error held by a Snapshot.
type SnapshotError struct {
	// Kind tags the error with its taxonomy class.
	Kind ErrorKind `json:"kind"`
	// Message is ready for display.
	Message string `json:"message"`
	// Recoverable marks notices that do not invalidate the data shown alongside them.
	Recoverable bool `json:"recoverable"`
}

// Snapshot is an immutable point-in-time view of the sync state.
// Slices and pointers inside a published snapshot are never mutated;
// observers must not mutate them either.
type Snapshot struct {
	// Version increases by one with every published mutation.
	Version uint64 `json:"version"`
	// Target is the user the current data belongs to, empty after Clear.
	Target string `json:"target,omitempty"`
	// Profile is the last successfully fetched profile.
	Profile *Profile `json:"profile,omitempty"`
	// Repositories is sorted newest first.
	Repositories []RepositoryEntry `json:"repositories"`
	// Loading is true while an operation started after the last completion is running.
	Loading bool `json:"loading"`
	// Error is the last failure, nil when the last attempt succeeded.
	Error *SnapshotError `json:"error,omitempty"`
	// RateLimitReset is when the exhausted quota resets, when known.
	RateLimitReset *time.Time `json:"rate_limit_reset,omitempty"`
	// Stats holds provider-wide totals.
	Stats GlobalStats `json:"stats"`
}

// HasError reports whether the snapshot carries a non-recoverable error.
func (s Snapshot) HasError() bool {
	return s.Error != nil && !s.Error.Recoverable
}
