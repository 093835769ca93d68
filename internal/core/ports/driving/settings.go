package driving

import "github.com/custodia-labs/murmur/internal/core/domain"

// SettingsService reads and updates application settings.
type SettingsService interface {
	// Get returns the current settings with defaults applied.
	Get() domain.AppSettings

	// Set validates and persists a single setting by key.
	Set(key, value string) error

	// Keys lists the recognised setting keys in display order.
	Keys() []string

	// Path returns the settings file location.
	Path() string
}
