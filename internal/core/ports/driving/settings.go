package driving

import "github.com/everydaystudy/golf-db-loader/internal/core/domain"

// SettingsService resolves and edits loader settings.
type SettingsService interface {
	// Get resolves settings from defaults, the config file and the
	// environment, then validates them. Invalid settings fail with
	// errors wrapping *domain.ConfigError.
	Get() (*domain.Settings, error)

	// Set validates and persists a single setting given as text.
	Set(key, value string) error

	// Keys returns every recognised setting key.
	Keys() []string

	// Path returns where settings are persisted.
	Path() string
}
