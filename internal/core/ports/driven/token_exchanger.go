package driven

import "context"

// TokenExchanger exchanges an authorization code for an access token.
type TokenExchanger interface {
	// AuthorizationURL returns the URL the user opens to authorise the app.
	// state is echoed back on the redirect and identifies the attempt.
	AuthorizationURL(state string) (string, error)

	// Exchange trades a single-use code for an access token.
	// It makes exactly one attempt. A response carrying an error field is
	// returned as a *domain.ExchangeError whatever its HTTP status.
	Exchange(ctx context.Context, code, state string) (string, error)
}
