package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/ghview/internal/core/domain"
	"github.com/custodia-labs/ghview/internal/core/ports/driven"
	"github.com/custodia-labs/ghview/internal/core/ports/driving"
	"github.com/custodia-labs/ghview/internal/logger"
)

// Ensure AuthFlow implements the interface.
var _ driving.AuthService = (*AuthFlow)(nil)

// AuthFlow runs the OAuth login state machine:
//
//	Idle -> AwaitingRedirect -> ExchangingCode -> Authenticated
//	                                           -> ExchangeFailed -> Idle
//
// The token store is the source of truth for Authenticated: any token
// change, including one made outside the flow, moves the state to
// Authenticated or Idle.
type AuthFlow struct {
	tokens    *TokenStore
	exchanger driven.TokenExchanger

	// commitMu orders persisting an exchanged token against Logout.
	commitMu sync.Mutex

	mu      sync.Mutex
	status  domain.AuthStatus
	state   string
	failure error

	feed   *broadcaster[domain.AuthStatus]
	unbind func()
}

// NewAuthFlow creates a login flow. It starts Authenticated when a token
// is already persisted.
func NewAuthFlow(tokens *TokenStore, exchanger driven.TokenExchanger) *AuthFlow {
	f := &AuthFlow{tokens: tokens, exchanger: exchanger}
	if tokens.Get() != "" {
		f.status.State = domain.AuthAuthenticated
	}
	f.feed = newBroadcaster(f.status)
	f.unbind = tokens.OnChange(f.onTokenChange)
	return f
}

// Close detaches the flow from the token store.
func (f *AuthFlow) Close() {
	f.unbind()
}

// Status returns the current login state.
func (f *AuthFlow) Status() domain.AuthStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Subscribe returns a channel that always holds the latest status.
func (f *AuthFlow) Subscribe() (<-chan domain.AuthStatus, func()) {
	return f.feed.subscribe()
}

// TakeFailure returns the failure of the last attempt once, then nil.
func (f *AuthFlow) TakeFailure() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := f.failure
	f.failure = nil
	return err
}

// Begin starts a new login attempt and returns the authorization URL.
// A pending attempt is replaced.
func (f *AuthFlow) Begin(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.status.State {
	case domain.AuthIdle, domain.AuthAwaitingRedirect:
	default:
		return "", fmt.Errorf("%w: cannot begin login while %s", domain.ErrInvalidTransition, f.status.State)
	}

	state, err := generateState()
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	authURL, err := f.exchanger.AuthorizationURL(state)
	if err != nil {
		return "", fmt.Errorf("authorization url: %w", err)
	}

	f.state = state
	f.failure = nil
	f.setLocked(domain.AuthStatus{State: domain.AuthAwaitingRedirect, AttemptID: uuid.New().String()})
	logger.Debug("auth: attempt %s awaiting redirect", f.status.AttemptID)
	return authURL, nil
}

// HandleRedirect consumes the redirect of the pending attempt.
//
// An error parameter or a mismatched state fails the attempt. A code is
// exchanged exactly once; the token is persisted only on success. A
// redirect with neither code nor error abandons the attempt.
func (f *AuthFlow) HandleRedirect(ctx context.Context, rawURL string) error {
	f.mu.Lock()
	if f.status.State != domain.AuthAwaitingRedirect {
		f.mu.Unlock()
		return domain.ErrNoPendingLogin
	}
	attempt := f.status.AttemptID

	u, err := url.Parse(rawURL)
	if err != nil {
		err = fmt.Errorf("%w: redirect url: %w", domain.ErrInvalidInput, err)
		f.failLocked(err)
		f.mu.Unlock()
		return err
	}
	q := u.Query()

	if st := q.Get("state"); st != "" && st != f.state {
		f.failLocked(domain.ErrStateMismatch)
		f.mu.Unlock()
		return domain.ErrStateMismatch
	}
	if code := q.Get("error"); code != "" {
		err := &domain.ExchangeError{Code: code, Description: q.Get("error_description")}
		f.failLocked(err)
		f.mu.Unlock()
		return err
	}

	code := q.Get("code")
	if code == "" {
		logger.Debug("auth: attempt %s abandoned", attempt)
		f.state = ""
		f.setLocked(domain.AuthStatus{State: domain.AuthIdle, AttemptID: attempt})
		f.mu.Unlock()
		return nil
	}

	state := f.state
	f.state = ""
	f.setLocked(domain.AuthStatus{State: domain.AuthExchangingCode, AttemptID: attempt})
	f.mu.Unlock()

	token, err := f.exchanger.Exchange(ctx, code, state)
	if err == nil && token == "" {
		err = &domain.ExchangeError{Code: "empty_token", Description: "no access token in response"}
	}

	f.commitMu.Lock()
	if !f.stillExchanging(attempt) {
		f.commitMu.Unlock()
		return fmt.Errorf("%w: attempt %s superseded", domain.ErrInvalidTransition, attempt)
	}
	if err == nil {
		err = f.tokens.Set(ctx, token)
	}
	f.commitMu.Unlock()
	if err != nil {
		f.mu.Lock()
		f.failLocked(err)
		f.mu.Unlock()
		return err
	}

	logger.Info("auth: attempt %s authenticated", attempt)
	return nil
}

// Abandon returns a pending attempt to Idle. It does nothing in any other state.
func (f *AuthFlow) Abandon() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status.State != domain.AuthAwaitingRedirect {
		return
	}
	f.state = ""
	f.setLocked(domain.AuthStatus{State: domain.AuthIdle, AttemptID: f.status.AttemptID})
}

// Logout clears the stored token. Token observers, including the sync
// state, have seen the cleared token by the time Logout returns. A token
// being persisted by a finished exchange is written first and then cleared.
func (f *AuthFlow) Logout(ctx context.Context) error {
	f.commitMu.Lock()
	defer f.commitMu.Unlock()

	err := f.tokens.Clear(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = ""
	if f.status.State != domain.AuthIdle {
		f.setLocked(domain.AuthStatus{State: domain.AuthIdle})
	}
	return err
}

func (f *AuthFlow) stillExchanging(attempt string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status.State == domain.AuthExchangingCode && f.status.AttemptID == attempt
}

// onTokenChange runs synchronously inside TokenStore.Set and Clear.
func (f *AuthFlow) onTokenChange(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case token != "" && f.status.State != domain.AuthAuthenticated:
		f.state = ""
		f.setLocked(domain.AuthStatus{State: domain.AuthAuthenticated, AttemptID: f.status.AttemptID})
	case token == "" && f.status.State == domain.AuthAuthenticated:
		f.setLocked(domain.AuthStatus{State: domain.AuthIdle})
	}
}

// failLocked reports the failure once and rests in Idle. Must be called with mu held.
func (f *AuthFlow) failLocked(err error) {
	attempt := f.status.AttemptID
	f.state = ""
	f.failure = err

	var exErr *domain.ExchangeError
	if errors.As(err, &exErr) {
		logger.Warn("auth: attempt %s failed: %s", attempt, exErr.Code)
	} else {
		logger.Warn("auth: attempt %s failed: %v", attempt, err)
	}

	f.setLocked(domain.AuthStatus{State: domain.AuthExchangeFailed, AttemptID: attempt, Failure: err})
	f.setLocked(domain.AuthStatus{State: domain.AuthIdle, AttemptID: attempt})
}

// setLocked must be called with mu held.
func (f *AuthFlow) setLocked(status domain.AuthStatus) {
	f.status = status
	f.feed.publish(status)
}
