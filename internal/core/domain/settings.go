package domain

import "time"

// OAuthMode selects how authorization codes are exchanged for tokens.
type OAuthMode string

// Available exchange modes.
const (
	// OAuthModeProxy exchanges codes through a trusted proxy holding the client secret.
	OAuthModeProxy OAuthMode = "proxy"

	// OAuthModeDirect exchanges codes with the provider directly using PKCE.
	OAuthModeDirect OAuthMode = "direct"
)

// IsValid returns true if the mode is recognised.
func (m OAuthMode) IsValid() bool {
	return m == OAuthModeProxy || m == OAuthModeDirect
}

// Defaults.
const (
	DefaultBaseURL           = "https://api.github.com/"
	DefaultUserAgent         = "ghview"
	DefaultRequestsPerSecond = 10.0
	DefaultTimeout           = 30 * time.Second
	DefaultDebounceWindow    = 500 * time.Millisecond
	DefaultProxyURL          = "https://github-oauth-proxy-uuuo.onrender.com"
	DefaultCallbackPort      = 8976
	DefaultRedirectURI       = "ghview://callback"
)

// Settings is the resolved application configuration.
type Settings struct {
	// BaseURL is the provider REST API root.
	BaseURL string
	// UserAgent identifies the client on every request.
	UserAgent string
	// RequestsPerSecond caps the proactive request rate.
	RequestsPerSecond float64
	// Timeout bounds every HTTP request. Requests are never retried.
	Timeout time.Duration
	// DebounceWindow is the search quiescence window.
	DebounceWindow time.Duration
	// OAuthMode selects the exchanger.
	OAuthMode OAuthMode
	// ProxyURL is the root of the exchange proxy.
	ProxyURL string
	// ClientID and ClientSecret are used in direct mode.
	ClientID     string
	ClientSecret string
	// CallbackPort is the loopback port that receives the redirect.
	CallbackPort int
	// DataDir holds the credential database.
	DataDir string
}

// DefaultSettings returns settings with every default applied.
func DefaultSettings() Settings {
	return Settings{
		BaseURL:           DefaultBaseURL,
		UserAgent:         DefaultUserAgent,
		RequestsPerSecond: DefaultRequestsPerSecond,
		Timeout:           DefaultTimeout,
		DebounceWindow:    DefaultDebounceWindow,
		OAuthMode:         OAuthModeProxy,
		ProxyURL:          DefaultProxyURL,
		CallbackPort:      DefaultCallbackPort,
	}
}
