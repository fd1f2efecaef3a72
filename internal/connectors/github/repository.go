package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/ghview/internal/core/domain"
	"github.com/custodia-labs/ghview/internal/core/ports/driven"
)

// Search queries whose total counts make up the global statistics.
const (
	repositoriesQuery = "stars:>1"
	usersQuery        = "followers:>1"
)

// Ensure Repository implements the interface.
var _ driven.SyncRepository = (*Repository)(nil)

// Repository implements driven.SyncRepository over a Client.
// Only GetAuthenticatedUser sends a credential.
type Repository struct {
	client *Client
}

// NewRepository creates a sync repository backed by client.
func NewRepository(client *Client) *Repository {
	return &Repository{client: client}
}

// GetUser fetches a public profile.
func (r *Repository) GetUser(ctx context.Context, username string) (*domain.Profile, error) {
	user, err := r.client.User(ctx, Anonymous, username)
	if err != nil {
		return nil, err
	}
	return toProfile(user), nil
}

// GetAuthenticatedUser fetches the profile owning credential. An empty
// credential falls back to the stored token.
func (r *Repository) GetAuthenticatedUser(ctx context.Context, credential string) (*domain.Profile, error) {
	user, err := r.client.User(ctx, Bearer(credential), "")
	if err != nil {
		return nil, err
	}
	return toProfile(user), nil
}

// ListRepos fetches every page of username's public repositories.
func (r *Repository) ListRepos(ctx context.Context, username string) ([]domain.RepositoryEntry, error) {
	repos, err := r.client.ListUserRepos(ctx, Anonymous, username)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.RepositoryEntry, 0, len(repos))
	for _, repo := range repos {
		entries = append(entries, toEntry(repo))
	}
	return entries, nil
}

// GetReadme fetches and decodes the README of owner/repo.
func (r *Repository) GetReadme(ctx context.Context, owner, repo string) (string, error) {
	content, err := r.client.Readme(ctx, Anonymous, owner, repo)
	if err != nil {
		return "", err
	}
	if content.Content == nil {
		return "", classify(fmt.Errorf("%w: readme has no content", domain.ErrDecode), nil)
	}
	text, err := domain.DecodeContent(*content.Content, content.GetEncoding())
	if err != nil {
		return "", classify(err, nil)
	}
	return text, nil
}

// GetRateLimit fetches the core quota.
func (r *Repository) GetRateLimit(ctx context.Context) (*domain.RateLimit, error) {
	limits, err := r.client.RateLimits(ctx, Anonymous)
	if err != nil {
		return nil, err
	}
	core := limits.GetCore()
	if core == nil {
		return nil, classify(fmt.Errorf("%w: rate limit response has no core resource", domain.ErrDecode), nil)
	}
	return &domain.RateLimit{
		Limit:     core.Limit,
		Remaining: core.Remaining,
		Reset:     core.Reset.Time,
	}, nil
}

// GetGlobalStats fetches provider-wide repository and user totals.
func (r *Repository) GetGlobalStats(ctx context.Context) (*domain.GlobalStats, error) {
	repos, err := r.client.CountRepositories(ctx, Anonymous, repositoriesQuery)
	if err != nil {
		return nil, err
	}
	users, err := r.client.CountUsers(ctx, Anonymous, usersQuery)
	if err != nil {
		return nil, err
	}
	return &domain.GlobalStats{TotalRepositories: repos, TotalUsers: users}, nil
}

func toProfile(u *gh.User) *domain.Profile {
	return &domain.Profile{
		Login:     u.GetLogin(),
		Name:      u.GetName(),
		AvatarURL: u.GetAvatarURL(),
		Bio:       u.GetBio(),
		Location:  u.GetLocation(),
		Blog:      u.GetBlog(),
		Followers: u.GetFollowers(),
		Following: u.GetFollowing(),
	}
}

func toEntry(r *gh.Repository) domain.RepositoryEntry {
	owner := r.GetOwner()
	return domain.RepositoryEntry{
		Name:        r.GetName(),
		Description: r.GetDescription(),
		Stars:       r.GetStargazersCount(),
		Forks:       r.GetForksCount(),
		Owner:       domain.Owner{Login: owner.GetLogin(), AvatarURL: owner.GetAvatarURL()},
		URL:         r.GetHTMLURL(),
		UpdatedAt:   r.GetUpdatedAt().Time,
	}
}
