package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// URIScheme is the custom URI scheme for ghview resources.
	uriScheme = "ghview://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "snapshot",
		Name:        "snapshot",
		Description: "The current profile, repositories and error state",
		MIMEType:    "application/json",
	}, s.handleSnapshotResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "repos/{owner}/{repo}/readme",
		Name:        "repository-readme",
		Description: "README of a repository",
		MIMEType:    "text/markdown",
	}, s.handleReadmeResource)
}

// handleSnapshotResource returns the current snapshot.
func (s *Server) handleSnapshotResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(s.ports.Sync.Snapshot(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling snapshot: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleReadmeResource returns the README of a repository.
func (s *Server) handleReadmeResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	owner, repo := extractRepository(req.Params.URI)
	if owner == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	content, err := s.ports.Sync.Readme(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("fetching readme: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     content,
		}},
	}, nil
}

// extractRepository extracts owner and repo from a URI like ghview://repos/{owner}/{repo}/readme.
func extractRepository(uri string) (owner, repo string) {
	const prefix = uriScheme + "repos/"
	const suffix = "/readme"

	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return "", ""
	}

	parts := strings.Split(strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", ""
	}
	return parts[0], parts[1]
}
