package services

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/ghview/internal/core/domain"
	"github.com/custodia-labs/ghview/internal/core/ports/driven"
	"github.com/custodia-labs/ghview/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyBaseURL           = "github.base_url"
	KeyUserAgent         = "github.user_agent"
	KeyRequestsPerSecond = "github.requests_per_second"
	KeyTimeoutSeconds    = "http.timeout_seconds"
	KeyDebounceMillis    = "search.debounce_ms"
	KeyOAuthMode         = "oauth.mode"
	KeyProxyURL          = "oauth.proxy_url"
	KeyClientID          = "oauth.client_id"
	KeyClientSecret      = "oauth.client_secret"
	KeyCallbackPort      = "oauth.callback_port"
	KeyDataDir           = "storage.data_dir"
)

type valueKind int

const (
	kindString valueKind = iota
	kindURL
	kindInt
	kindFloat
	kindMode
)

var knownKeys = map[string]valueKind{
	KeyBaseURL:           kindURL,
	KeyUserAgent:         kindString,
	KeyRequestsPerSecond: kindFloat,
	KeyTimeoutSeconds:    kindInt,
	KeyDebounceMillis:    kindInt,
	KeyOAuthMode:         kindMode,
	KeyProxyURL:          kindURL,
	KeyClientID:          kindString,
	KeyClientSecret:      kindString,
	KeyCallbackPort:      kindInt,
	KeyDataDir:           kindString,
}

// SettingsService maps configuration keys to domain.Settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get returns the resolved settings. Missing or invalid values fall back
// to their defaults.
func (s *SettingsService) Get() domain.Settings {
	defaults := domain.DefaultSettings()

	settings := domain.Settings{
		BaseURL:           s.getString(KeyBaseURL, defaults.BaseURL),
		UserAgent:         s.getString(KeyUserAgent, defaults.UserAgent),
		RequestsPerSecond: s.getFloat(KeyRequestsPerSecond, defaults.RequestsPerSecond),
		Timeout:           s.getDuration(KeyTimeoutSeconds, time.Second, defaults.Timeout),
		DebounceWindow:    s.getDuration(KeyDebounceMillis, time.Millisecond, defaults.DebounceWindow),
		OAuthMode:         s.getMode(defaults.OAuthMode),
		ProxyURL:          strings.TrimRight(s.getString(KeyProxyURL, defaults.ProxyURL), "/"),
		ClientID:          s.configStore.GetString(KeyClientID),
		ClientSecret:      s.configStore.GetString(KeyClientSecret),
		CallbackPort:      s.getInt(KeyCallbackPort, defaults.CallbackPort),
		DataDir:           s.configStore.GetString(KeyDataDir),
	}
	if !strings.HasSuffix(settings.BaseURL, "/") {
		settings.BaseURL += "/"
	}
	return settings
}

// Set validates and stores a single key.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := knownKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var stored any
	switch kind {
	case kindURL:
		u, err := url.Parse(value)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: %s must be an absolute URL", domain.ErrInvalidInput, key)
		}
		stored = value
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
		}
		stored = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("%w: %s must be a positive number", domain.ErrInvalidInput, key)
		}
		stored = f
	case kindMode:
		if !domain.OAuthMode(value).IsValid() {
			return fmt.Errorf("%w: %s must be %q or %q", domain.ErrInvalidInput, key,
				domain.OAuthModeProxy, domain.OAuthModeDirect)
		}
		stored = value
	default:
		stored = value
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns every recognised setting key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Values returns the resolved value of every key as text. The client
// secret is masked.
func (s *SettingsService) Values() map[string]string {
	settings := s.Get()

	secret := ""
	if settings.ClientSecret != "" {
		secret = domain.MaskCredential(settings.ClientSecret)
	}

	return map[string]string{
		KeyBaseURL:           settings.BaseURL,
		KeyUserAgent:         settings.UserAgent,
		KeyRequestsPerSecond: strconv.FormatFloat(settings.RequestsPerSecond, 'f', -1, 64),
		KeyTimeoutSeconds:    strconv.Itoa(int(settings.Timeout / time.Second)),
		KeyDebounceMillis:    strconv.FormatInt(settings.DebounceWindow.Milliseconds(), 10),
		KeyOAuthMode:         string(settings.OAuthMode),
		KeyProxyURL:          settings.ProxyURL,
		KeyClientID:          settings.ClientID,
		KeyClientSecret:      secret,
		KeyCallbackPort:      strconv.Itoa(settings.CallbackPort),
		KeyDataDir:           settings.DataDir,
	}
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, unit, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return time.Duration(val) * unit
}

func (s *SettingsService) getMode(defaultVal domain.OAuthMode) domain.OAuthMode {
	mode := domain.OAuthMode(s.configStore.GetString(KeyOAuthMode))
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}
