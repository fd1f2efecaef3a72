package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ghview/internal/core/domain"
	"github.com/custodia-labs/ghview/internal/normalisers"
)

// LookupInput is the input schema for the lookup_user tool.
type LookupInput struct {
	Username string `json:"username" jsonschema:"the GitHub login to look up"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of repositories to return (default 30)"`
}

// LookupOutput is the output schema for the lookup_user and whoami tools.
type LookupOutput struct {
	Profile      *domain.Profile    `json:"profile,omitempty"`
	Repositories []RepositoryOutput `json:"repositories"`
	Total        int                `json:"total"`
	Notice       string             `json:"notice,omitempty"`
}

// RepositoryOutput represents a single repository.
type RepositoryOutput struct {
	FullName    string `json:"full_name"`
	Description string `json:"description,omitempty"`
	Stars       int    `json:"stars"`
	Forks       int    `json:"forks"`
	URL         string `json:"url"`
	UpdatedAt   string `json:"updated_at"`
}

// ReadmeInput is the input schema for the get_readme tool.
type ReadmeInput struct {
	Owner string `json:"owner" jsonschema:"the repository owner"`
	Repo  string `json:"repo" jsonschema:"the repository name"`
	Plain bool   `json:"plain,omitempty" jsonschema:"strip Markdown and HTML formatting"`
	Page  int    `json:"page,omitempty" jsonschema:"1-based page of a long README; 0 returns all of it"`
}

// ReadmeOutput is the output schema for the get_readme tool.
type ReadmeOutput struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
	Page    int    `json:"page,omitempty"`
	Pages   int    `json:"pages"`
}

// EmptyInput is the input schema for tools without parameters.
type EmptyInput struct{}

// RateLimitOutput is the output schema for the rate_limit tool.
type RateLimitOutput struct {
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	Reset     string `json:"reset"`
}

// defaultRepoLimit caps repositories returned by lookup tools.
const defaultRepoLimit = 30

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "lookup_user",
		Description: "Fetch a GitHub user's public profile and repositories, newest first",
	}, s.handleLookup)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "whoami",
		Description: "Fetch the profile and repositories of the logged-in GitHub user",
	}, s.handleWhoami)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_readme",
		Description: "Fetch the decoded README of a GitHub repository, whole or one page at a time",
	}, s.handleReadme)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "rate_limit",
		Description: "Report the remaining GitHub API quota",
	}, s.handleRateLimit)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "global_stats",
		Description: "Report the total number of GitHub repositories and users",
	}, s.handleGlobalStats)
}

// handleLookup handles the lookup_user tool invocation.
func (s *Server) handleLookup(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LookupInput,
) (*mcp.CallToolResult, LookupOutput, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, LookupOutput{}, errors.New("username is required")
	}

	s.ports.Sync.Lookup(ctx, username)
	return s.snapshotResult(input.Limit)
}

// handleWhoami handles the whoami tool invocation.
func (s *Server) handleWhoami(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, LookupOutput, error) {
	if s.ports.Auth != nil && s.ports.Auth.Status().State != domain.AuthAuthenticated {
		return nil, LookupOutput{}, errors.New("not logged in: run 'ghview login' first")
	}

	// An empty credential selects the stored token.
	s.ports.Sync.FetchAuthenticatedProfile(ctx, "")
	return s.snapshotResult(0)
}

func (s *Server) snapshotResult(limit int) (*mcp.CallToolResult, LookupOutput, error) {
	if limit <= 0 {
		limit = defaultRepoLimit
	}

	snap := s.ports.Sync.Snapshot()
	if snap.HasError() {
		return nil, LookupOutput{}, errors.New(snap.Error.Message)
	}

	repos := snap.Repositories
	output := LookupOutput{
		Profile: snap.Profile,
		Total:   len(repos),
	}
	if len(repos) > limit {
		repos = repos[:limit]
	}
	output.Repositories = make([]RepositoryOutput, len(repos))
	for i := range repos {
		output.Repositories[i] = RepositoryOutput{
			FullName:    repos[i].FullName(),
			Description: repos[i].Description,
			Stars:       repos[i].Stars,
			Forks:       repos[i].Forks,
			URL:         repos[i].URL,
			UpdatedAt:   repos[i].UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}
	if snap.Error != nil {
		output.Notice = snap.Error.Message
	}

	return nil, output, nil
}

// handleReadme handles the get_readme tool invocation.
func (s *Server) handleReadme(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReadmeInput,
) (*mcp.CallToolResult, ReadmeOutput, error) {
	content, err := s.ports.Sync.Readme(ctx, input.Owner, input.Repo)
	if err != nil {
		return nil, ReadmeOutput{}, fmt.Errorf("fetching readme: %w", err)
	}
	output := ReadmeOutput{Title: normalisers.Title(content)}
	if input.Plain {
		content = normalisers.PlainText(content)
	}

	pages := s.readmePages.Split(content)
	output.Pages = len(pages)
	switch {
	case input.Page == 0:
		output.Content = content
	case input.Page < 0 || input.Page > len(pages):
		return nil, ReadmeOutput{}, fmt.Errorf("page %d out of range: the README has %d pages", input.Page, len(pages))
	default:
		output.Page = input.Page
		output.Content = pages[input.Page-1]
	}
	return nil, output, nil
}

// handleRateLimit handles the rate_limit tool invocation.
func (s *Server) handleRateLimit(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, RateLimitOutput, error) {
	rl, err := s.ports.Sync.RateLimit(ctx)
	if err != nil {
		return nil, RateLimitOutput{}, fmt.Errorf("fetching rate limit: %w", err)
	}
	return nil, RateLimitOutput{
		Limit:     rl.Limit,
		Remaining: rl.Remaining,
		Reset:     rl.Reset.UTC().Format("2006-01-02T15:04:05Z"),
	}, nil
}

// handleGlobalStats handles the global_stats tool invocation.
func (s *Server) handleGlobalStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, domain.GlobalStats, error) {
	s.ports.Sync.FetchGlobalStats(ctx)
	return nil, s.ports.Sync.Snapshot().Stats, nil
}
