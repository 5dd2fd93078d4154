package driving

import "github.com/custodia-labs/mediaindex/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetDRMEnabled toggles DRM metadata extraction.
	SetDRMEnabled(enabled bool) error

	// SetDRMKeyring sets the path of the DCF keyring.
	SetDRMKeyring(path string) error

	// Set assigns a setting by key from its string form.
	Set(key, value string) error

	// Reset removes a setting so its default applies again.
	Reset(key string) error

	// Keys returns the names of every supported setting.
	Keys() []string

	// ConfigPath returns the location of the backing configuration file.
	ConfigPath() string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
