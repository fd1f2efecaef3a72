package domain

import (
	"sort"
	"time"
)

// Owner references the account that owns a repository.
type Owner struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

// RepositoryEntry is a repository listed for a user.
type RepositoryEntry struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	Owner       Owner     `json:"owner"`
	URL         string    `json:"url"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FullName returns "owner/name".
func (r RepositoryEntry) FullName() string {
	if r.Owner.Login == "" {
		return r.Name
	}
	return r.Owner.Login + "/" + r.Name
}

// SortRepositories returns a sorted copy of repos: most recently updated
// first, ties broken by name ascending. The input slice is not modified.
func SortRepositories(repos []RepositoryEntry) []RepositoryEntry {
	sorted := make([]RepositoryEntry, len(repos))
	copy(sorted, repos)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.Name < b.Name
	})
	return sorted
}
