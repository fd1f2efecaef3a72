package driving

import "github.com/custodia-labs/ghview/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the resolved settings with defaults applied.
	Get() domain.Settings

	// Set validates and persists a single setting.
	Set(key, value string) error

	// Keys returns every recognised setting key.
	Keys() []string

	// Values returns the resolved value of every key as text, secrets masked.
	Values() map[string]string
}
