package domain

// AuthState is a position of the OAuth login state machine.
type AuthState int

// Login states.
const (
	// AuthIdle has no token and no pending exchange.
	AuthIdle AuthState = iota
	// AuthAwaitingRedirect waits for the provider to redirect back with a code or an error.
	AuthAwaitingRedirect
	// AuthExchangingCode is exchanging the authorization code for a token.
	AuthExchangingCode
	// AuthAuthenticated has a persisted token.
	AuthAuthenticated
	// AuthExchangeFailed is transient: the flow reports it once and rests in AuthIdle.
	AuthExchangeFailed
)

// String returns the string representation.
func (s AuthState) String() string {
	switch s {
	case AuthIdle:
		return "idle"
	case AuthAwaitingRedirect:
		return "awaiting_redirect"
	case AuthExchangingCode:
		return "exchanging_code"
	case AuthAuthenticated:
		return "authenticated"
	case AuthExchangeFailed:
		return "exchange_failed"
	default:
		return "unknown"
	}
}

// AuthStatus is an observable view of the login state machine.
type AuthStatus struct {
	// State is the current state.
	State AuthState
	// AttemptID identifies the current or last login attempt.
	AttemptID string
	// Failure is set on the status published when an attempt fails.
	Failure error
}

// CredentialKey is the storage key of the provider access token.
const CredentialKey = "github_token"

// MaskCredential returns a log-safe representation of a credential.
func MaskCredential(credential string) string {
	if len(credential) <= 8 {
		return "****"
	}
	return credential[:4] + "..." + credential[len(credential)-4:]
}
