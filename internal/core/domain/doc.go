// Package domain defines the core entities for ghview.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Profile: A GitHub user profile snapshot
//   - RepositoryEntry: A repository listed for a user
//   - Snapshot: The aggregate observable sync state
//   - ProviderError: A classified failure from the provider
//   - AuthStatus: The position of the OAuth login state machine
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
