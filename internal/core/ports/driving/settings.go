package driving

import "github.com/custodia-labs/od-drafter/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings with defaults applied.
	Get() (*domain.AppSettings, error)

	// Set validates and persists a single key.
	Set(key, value string) error

	// Keys returns every recognised key.
	Keys() []string

	// Path returns the configuration file path.
	Path() string
}
