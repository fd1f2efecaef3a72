package mcp

import (
	"github.com/custodia-labs/ghview/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Sync provides profile, repository and README access.
	Sync driving.SyncService

	// Auth reports the login state. Optional.
	Auth driving.AuthService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Sync == nil {
		return ErrMissingSyncService
	}
	return nil
}
