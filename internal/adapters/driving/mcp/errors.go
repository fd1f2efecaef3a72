// Package mcp provides an MCP (Model Context Protocol) server adapter for ghview.
// It lets AI assistants look up GitHub users, repositories and READMEs
// through the same sync state the CLI and TUI use.
package mcp

import "errors"

// ErrMissingSyncService is returned when the sync service is not provided.
var ErrMissingSyncService = errors.New("mcp: sync service is required")
