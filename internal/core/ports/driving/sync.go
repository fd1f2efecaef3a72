package driving

import (
	"context"

	"github.com/custodia-labs/ghview/internal/core/domain"
)

// SyncService is the observable state container for profile and repository data.
//
// Fetch operations block until their result has been written (or discarded
// as stale) and never return provider errors: failures are stored in the
// snapshot for display.
type SyncService interface {
	// FetchProfile loads the public profile of username.
	FetchProfile(ctx context.Context, username string)

	// FetchRepos loads every public repository of username, newest first.
	FetchRepos(ctx context.Context, username string)

	// FetchAuthenticatedProfile loads the profile owning credential, then its repositories.
	FetchAuthenticatedProfile(ctx context.Context, credential string)

	// Lookup clears the state and loads profile and repositories of username concurrently.
	Lookup(ctx context.Context, username string)

	// FetchGlobalStats loads provider-wide totals.
	FetchGlobalStats(ctx context.Context)

	// RateLimit returns the current quota. An exhausted quota records its reset instant.
	RateLimit(ctx context.Context) (*domain.RateLimit, error)

	// Readme returns the decoded README of owner/repo without touching the state.
	Readme(ctx context.Context, owner, repo string) (string, error)

	// Clear resets the state and supersedes every in-flight operation.
	Clear()

	// Snapshot returns the current state.
	Snapshot() domain.Snapshot

	// Subscribe returns a channel that always holds the latest snapshot.
	// Intermediate versions may be skipped. Call the returned function to unsubscribe.
	Subscribe() (<-chan domain.Snapshot, func())
}
