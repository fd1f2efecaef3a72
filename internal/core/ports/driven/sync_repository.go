package driven

import (
	"context"

	"github.com/custodia-labs/ghview/internal/core/domain"
)

// SyncRepository translates domain operations into provider API calls.
// Implementations hold no state between calls. Every failure is returned
// as a *domain.ProviderError carrying exactly one ErrorKind.
type SyncRepository interface {
	// GetUser fetches a public profile. No credential is sent.
	GetUser(ctx context.Context, username string) (*domain.Profile, error)

	// GetAuthenticatedUser fetches the profile owning credential.
	GetAuthenticatedUser(ctx context.Context, credential string) (*domain.Profile, error)

	// ListRepos fetches every page of a user's public repositories.
	// The order of the result is unspecified.
	ListRepos(ctx context.Context, username string) ([]domain.RepositoryEntry, error)

	// GetReadme fetches and decodes the README of owner/repo.
	GetReadme(ctx context.Context, owner, repo string) (string, error)

	// GetRateLimit fetches the current core quota.
	GetRateLimit(ctx context.Context) (*domain.RateLimit, error)

	// GetGlobalStats fetches provider-wide repository and user totals.
	GetGlobalStats(ctx context.Context) (*domain.GlobalStats, error)
}
