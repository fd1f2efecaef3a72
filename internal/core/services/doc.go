// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// SyncState is the observable state container. FetchCoordinator debounces
// input-driven fetches. AuthFlow runs the OAuth login state machine on top
// of TokenStore, which owns the single persisted access token.
//
// Services are pure Go with no external dependencies beyond google/uuid.
package services
