// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/ghview/internal/core/domain"
)

// SnapshotUpdated carries a new version of the sync state.
type SnapshotUpdated struct {
	Snapshot domain.Snapshot
}

// AuthChanged carries a new login status.
type AuthChanged struct {
	Status domain.AuthStatus
}

// RepositorySelected is sent when a repository is chosen from the list.
type RepositorySelected struct {
	Repository domain.RepositoryEntry
}

// ReadmeLoaded carries the README of a repository.
type ReadmeLoaded struct {
	Owner   string
	Repo    string
	Content string
	Err     error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewLookup is the username input with profile and repositories.
	ViewLookup ViewType = iota
	// ViewReadme shows the README of a repository.
	ViewReadme
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewLookup:
		return "lookup"
	case ViewReadme:
		return "readme"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
