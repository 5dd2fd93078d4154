package services

import (
	"fmt"
	"strconv"

	"github.com/custodia-labs/mediaindex/internal/core/domain"
	"github.com/custodia-labs/mediaindex/internal/core/ports/driven"
	"github.com/custodia-labs/mediaindex/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyDRMEnabled   = "drm.enabled"
	keyDRMKeyring   = "drm.keyring"
	keyIndexDataDir = "index.data_dir"
	keySkipHidden   = "scan.skip_hidden"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		DRM: domain.DRMSettings{
			Enabled: s.getBool(keyDRMEnabled, defaults.DRM.Enabled),
			Keyring: s.getString(keyDRMKeyring, defaults.DRM.Keyring),
		},
		Index: domain.IndexSettings{
			DataDir: s.getString(keyIndexDataDir, defaults.Index.DataDir),
		},
		Scan: domain.ScanSettings{
			SkipHidden: s.getBool(keySkipHidden, defaults.Scan.SkipHidden),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if settings == nil {
		return domain.ErrInvalidInput
	}
	if err := s.configStore.Set(keyDRMEnabled, settings.DRM.Enabled); err != nil {
		return fmt.Errorf("save drm enabled: %w", err)
	}
	if err := s.configStore.Set(keyDRMKeyring, settings.DRM.Keyring); err != nil {
		return fmt.Errorf("save drm keyring: %w", err)
	}
	if err := s.configStore.Set(keyIndexDataDir, settings.Index.DataDir); err != nil {
		return fmt.Errorf("save index data_dir: %w", err)
	}
	if err := s.configStore.Set(keySkipHidden, settings.Scan.SkipHidden); err != nil {
		return fmt.Errorf("save scan skip_hidden: %w", err)
	}
	return nil
}

// SetDRMEnabled toggles DRM metadata extraction.
func (s *SettingsService) SetDRMEnabled(enabled bool) error {
	if err := s.configStore.Set(keyDRMEnabled, enabled); err != nil {
		return fmt.Errorf("save drm enabled: %w", err)
	}
	return nil
}

// SetDRMKeyring sets the path of the DCF keyring.
func (s *SettingsService) SetDRMKeyring(path string) error {
	if err := s.configStore.Set(keyDRMKeyring, path); err != nil {
		return fmt.Errorf("save drm keyring: %w", err)
	}
	return nil
}

// Set assigns a known key from its string form.
// Boolean keys accept anything strconv.ParseBool accepts.
func (s *SettingsService) Set(key, value string) error {
	switch key {
	case keyDRMEnabled, keySkipHidden:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects a boolean, got %q", domain.ErrInvalidInput, key, value)
		}
		if err := s.configStore.Set(key, b); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	case keyDRMKeyring, keyIndexDataDir:
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	return nil
}

// Reset removes a key so its default applies again.
func (s *SettingsService) Reset(key string) error {
	switch key {
	case keyDRMEnabled, keySkipHidden, keyDRMKeyring, keyIndexDataDir:
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err := s.configStore.Unset(key); err != nil {
		return fmt.Errorf("reset %s: %w", key, err)
	}
	return nil
}

// Keys returns the names of every supported setting.
func (s *SettingsService) Keys() []string {
	return []string{keyDRMEnabled, keyDRMKeyring, keyIndexDataDir, keySkipHidden}
}

// ConfigPath returns the location of the backing configuration file.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}
