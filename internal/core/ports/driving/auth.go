package driving

import (
	"context"

	"github.com/custodia-labs/ghview/internal/core/domain"
)

// AuthService drives the OAuth login state machine.
type AuthService interface {
	// Begin starts a login attempt and returns the authorization URL to open.
	Begin(ctx context.Context) (string, error)

	// HandleRedirect consumes the redirect of the current attempt.
	// A redirect carrying neither code nor error abandons the attempt.
	HandleRedirect(ctx context.Context, rawURL string) error

	// Abandon returns a pending attempt to idle.
	Abandon()

	// Logout clears the stored token. Every observer has seen the
	// cleared token by the time Logout returns.
	Logout(ctx context.Context) error

	// Status returns the current login state.
	Status() domain.AuthStatus

	// Subscribe returns a channel that always holds the latest status.
	Subscribe() (<-chan domain.AuthStatus, func())

	// TakeFailure returns the last attempt's failure once, then nil.
	TakeFailure() error
}

// TokenService exposes the stored access token.
type TokenService interface {
	// Get returns the last persisted token, or "" when unauthenticated.
	Get() string

	// Set persists token and notifies observers.
	Set(ctx context.Context, token string) error

	// Clear removes the token and notifies observers.
	Clear(ctx context.Context) error

	// Subscribe returns a channel that always holds the latest token.
	Subscribe() (<-chan string, func())
}
