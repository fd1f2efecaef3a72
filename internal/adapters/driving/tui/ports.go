// Package tui provides an interactive terminal user interface for ghview.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/ghview/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
type Ports struct {
	// Sync holds the profile and repository state the TUI renders.
	Sync driving.SyncService

	// Search debounces username edits into lookups.
	Search driving.SearchCoordinator

	// Auth reports the login state. It is optional.
	Auth driving.AuthService
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p.Sync == nil {
		return ErrMissingSyncService
	}
	if p.Search == nil {
		return ErrMissingSearchCoordinator
	}
	return nil
}
