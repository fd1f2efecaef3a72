package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/ghview/internal/core/domain"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = domain.DefaultTimeout

	// reposPerPage is the page size used when listing repositories.
	reposPerPage = 100
)

// Config configures a Client.
type Config struct {
	// BaseURL is the REST API root. Empty selects api.github.com.
	BaseURL string
	// UserAgent is sent with every request.
	UserAgent string
	// RequestsPerSecond caps the request rate.
	RequestsPerSecond float64
	// Timeout bounds every request.
	Timeout time.Duration
	// Tokens supplies the stored credential for StoredToken calls.
	Tokens TokenSource
	// Transport is the underlying round tripper. Nil selects http.DefaultTransport.
	Transport http.RoundTripper
}

// ConfigFromSettings derives a client configuration from application settings.
func ConfigFromSettings(s domain.Settings, tokens TokenSource) Config {
	return Config{
		BaseURL:           s.BaseURL,
		UserAgent:         s.UserAgent,
		RequestsPerSecond: s.RequestsPerSecond,
		Timeout:           s.Timeout,
		Tokens:            tokens,
	}
}

// Client wraps the go-github client with rate limiting and per-call
// credential selection. It is safe for concurrent use.
type Client struct {
	gh          *gh.Client
	rateLimiter *RateLimiter
}

// NewClient creates a GitHub API client.
func NewClient(cfg Config) (*Client, error) {
	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: &authTransport{tokens: cfg.Tokens, base: base},
	}
	client := gh.NewClient(httpClient)

	if cfg.BaseURL != "" {
		raw := cfg.BaseURL
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		baseURL, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: base url: %w", domain.ErrInvalidInput, err)
		}
		client.BaseURL = baseURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = domain.DefaultUserAgent
	}
	client.UserAgent = userAgent

	return &Client{
		gh:          client,
		rateLimiter: NewRateLimiter(cfg.RequestsPerSecond),
	}, nil
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// User fetches a user. An empty login fetches the authenticated user.
func (c *Client) User(ctx context.Context, auth Auth, login string) (*gh.User, error) {
	ctx, err := c.begin(ctx, auth)
	if err != nil {
		return nil, err
	}

	user, resp, err := c.gh.Users.Get(ctx, login)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, c.wrapError(err)
	}
	return user, nil
}

// ListUserRepos fetches every page of a user's public repositories.
func (c *Client) ListUserRepos(ctx context.Context, auth Auth, login string) ([]*gh.Repository, error) {
	opts := &gh.RepositoryListByUserOptions{
		ListOptions: gh.ListOptions{PerPage: reposPerPage},
	}

	var all []*gh.Repository
	for {
		pageCtx, err := c.begin(ctx, auth)
		if err != nil {
			return nil, err
		}

		repos, resp, err := c.gh.Repositories.ListByUser(pageCtx, login, opts)
		c.updateRateLimitFromResponse(resp)
		if err != nil {
			return nil, c.wrapError(err)
		}
		all = append(all, repos...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// Readme fetches the README of owner/repo without decoding it.
func (c *Client) Readme(ctx context.Context, auth Auth, owner, repo string) (*gh.RepositoryContent, error) {
	ctx, err := c.begin(ctx, auth)
	if err != nil {
		return nil, err
	}

	content, resp, err := c.gh.Repositories.GetReadme(ctx, owner, repo, nil)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, c.wrapError(err)
	}
	return content, nil
}

// RateLimits returns the current quota for every resource.
func (c *Client) RateLimits(ctx context.Context, auth Auth) (*gh.RateLimits, error) {
	ctx, err := c.begin(ctx, auth)
	if err != nil {
		return nil, err
	}

	limits, _, err := c.gh.RateLimit.Get(ctx)
	if err != nil {
		return nil, c.wrapError(err)
	}
	return limits, nil
}

// CountRepositories returns the total number of repositories matching query.
func (c *Client) CountRepositories(ctx context.Context, auth Auth, query string) (int, error) {
	ctx, err := c.begin(ctx, auth)
	if err != nil {
		return 0, err
	}

	result, resp, err := c.gh.Search.Repositories(ctx, query, countOnly())
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return 0, c.wrapError(err)
	}
	return result.GetTotal(), nil
}

// CountUsers returns the total number of users matching query.
func (c *Client) CountUsers(ctx context.Context, auth Auth, query string) (int, error) {
	ctx, err := c.begin(ctx, auth)
	if err != nil {
		return 0, err
	}

	result, resp, err := c.gh.Search.Users(ctx, query, countOnly())
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return 0, c.wrapError(err)
	}
	return result.GetTotal(), nil
}

// begin waits for the throttle and attaches the call's credential choice.
func (c *Client) begin(ctx context.Context, auth Auth) (context.Context, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, c.wrapError(err)
	}
	return withAuth(ctx, auth), nil
}

// updateRateLimitFromResponse updates the rate limiter from GitHub response headers.
func (c *Client) updateRateLimitFromResponse(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.rateLimiter.UpdateFromResponse(resp.Response)
}

// wrapError converts go-github errors to classified provider errors.
func (c *Client) wrapError(err error) error {
	return classify(err, c.rateLimiter)
}

func countOnly() *gh.SearchOptions {
	return &gh.SearchOptions{ListOptions: gh.ListOptions{PerPage: 1}}
}
