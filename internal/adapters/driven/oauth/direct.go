package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/custodia-labs/ghview/internal/core/domain"
	"github.com/custodia-labs/ghview/internal/core/ports/driven"
)

// Ensure DirectExchanger implements the interface.
var _ driven.TokenExchanger = (*DirectExchanger)(nil)

// DefaultScopes are requested by the direct exchanger.
var DefaultScopes = []string{"read:user"}

// DirectConfig configures a DirectExchanger.
type DirectConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
	// Endpoint overrides GitHub's OAuth endpoints.
	Endpoint *oauth2.Endpoint
	Timeout  time.Duration
}

// DirectExchanger exchanges codes with GitHub directly. Every attempt gets
// its own PKCE verifier, keyed by the attempt's state.
type DirectExchanger struct {
	cfg        oauth2.Config
	httpClient *http.Client

	mu        sync.Mutex
	verifiers map[string]string
}

// NewDirectExchanger creates a direct exchanger. A client ID is required.
func NewDirectExchanger(cfg DirectConfig) (*DirectExchanger, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: oauth.client_id is required in direct mode", domain.ErrInvalidInput)
	}
	endpoint := github.Endpoint
	if cfg.Endpoint != nil {
		endpoint = *cfg.Endpoint
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultTimeout
	}

	return &DirectExchanger{
		cfg: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       scopes,
		},
		httpClient: &http.Client{Timeout: timeout},
		verifiers:  make(map[string]string),
	}, nil
}

// AuthorizationURL returns GitHub's consent page with an S256 challenge.
func (d *DirectExchanger) AuthorizationURL(state string) (string, error) {
	if state == "" {
		return "", fmt.Errorf("%w: state is required", domain.ErrInvalidInput)
	}
	verifier := oauth2.GenerateVerifier()

	d.mu.Lock()
	d.verifiers[state] = verifier
	d.mu.Unlock()

	return d.cfg.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)), nil
}

// Exchange trades code for an access token using the verifier issued for state.
// The verifier is consumed whatever the outcome.
func (d *DirectExchanger) Exchange(ctx context.Context, code, state string) (string, error) {
	d.mu.Lock()
	verifier, ok := d.verifiers[state]
	delete(d.verifiers, state)
	d.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("%w: no pending verifier for state", domain.ErrStateMismatch)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, d.httpClient)
	token, err := d.cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.ErrorCode != "" {
			return "", &domain.ExchangeError{Code: retrieveErr.ErrorCode, Description: retrieveErr.ErrorDescription}
		}
		return "", fmt.Errorf("token request: %w", err)
	}
	return token.AccessToken, nil
}

// Pending returns the number of attempts awaiting exchange.
func (d *DirectExchanger) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.verifiers)
}
