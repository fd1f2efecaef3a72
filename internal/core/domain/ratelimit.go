package domain

import "time"

// RateLimit is the provider's quota for the core API resource.
type RateLimit struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Reset     time.Time `json:"reset"`
}

// Exhausted reports whether no requests remain before Reset.
func (r RateLimit) Exhausted(now time.Time) bool {
	return r.Remaining <= 0 && now.Before(r.Reset)
}

// GlobalStats holds provider-wide totals taken from search result counts.
type GlobalStats struct {
	TotalRepositories int `json:"total_repositories"`
	TotalUsers        int `json:"total_users"`
}
