package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/ghview/internal/core/domain"
	"github.com/custodia-labs/ghview/internal/core/ports/driven"
)

// Ensure ProxyExchanger implements the interface.
var _ driven.TokenExchanger = (*ProxyExchanger)(nil)

// tokenResponse is the body returned by the exchange proxy.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

// ProxyExchanger exchanges codes through an OAuth proxy:
//
//	login:    GET {proxy}/login?state=...&redirect_uri=...
//	exchange: GET {proxy}/exchange_token?code=...
type ProxyExchanger struct {
	baseURL     string
	redirectURI string
	httpClient  *http.Client
}

// NewProxyExchanger creates an exchanger for the proxy at proxyURL.
// redirectURI is passed to the proxy's login page when non-empty.
func NewProxyExchanger(proxyURL, redirectURI string, timeout time.Duration) (*ProxyExchanger, error) {
	u, err := url.Parse(proxyURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: proxy url %q", domain.ErrInvalidInput, proxyURL)
	}
	if timeout <= 0 {
		timeout = domain.DefaultTimeout
	}
	return &ProxyExchanger{
		baseURL:     strings.TrimSuffix(proxyURL, "/"),
		redirectURI: redirectURI,
		httpClient:  &http.Client{Timeout: timeout},
	}, nil
}

// AuthorizationURL returns the proxy's login page for the attempt.
func (p *ProxyExchanger) AuthorizationURL(state string) (string, error) {
	params := url.Values{}
	if state != "" {
		params.Set("state", state)
	}
	if p.redirectURI != "" {
		params.Set("redirect_uri", p.redirectURI)
	}
	if len(params) == 0 {
		return p.baseURL + "/login", nil
	}
	return p.baseURL + "/login?" + params.Encode(), nil
}

// Exchange trades code for an access token. It makes exactly one request.
func (p *ProxyExchanger) Exchange(ctx context.Context, code, _ string) (string, error) {
	endpoint := p.baseURL + "/exchange_token?" + url.Values{"code": {code}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	var body tokenResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&body)

	// An error field wins, then a token, whatever the status code.
	if decodeErr == nil && body.Error != "" {
		return "", &domain.ExchangeError{Code: body.Error, Description: body.Description}
	}
	if decodeErr == nil && body.AccessToken != "" {
		return body.AccessToken, nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed with status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("%w: decode token response: %w", domain.ErrDecode, decodeErr)
	}
	return body.AccessToken, nil
}
