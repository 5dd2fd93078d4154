package domain

// DRMSettings holds DRM decoder configuration.
type DRMSettings struct {
	// Enabled is the administrative switch for DRM metadata extraction.
	// When false, no decoder session is ever created.
	Enabled bool

	// Keyring is the path to the TOML keyring used by the DCF backend.
	Keyring string
}

// IndexSettings holds index storage configuration.
type IndexSettings struct {
	// DataDir is the directory holding the SQLite database.
	// Empty means ~/.mediaindex/data.
	DataDir string
}

// ScanSettings holds scanner behaviour configuration.
type ScanSettings struct {
	// SkipHidden skips dot-files and dot-directories, except the
	// thumbnails directory under DCIM.
	SkipHidden bool
}

// AppSettings holds all application settings.
type AppSettings struct {
	DRM   DRMSettings
	Index IndexSettings
	Scan  ScanSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// DRM is disabled until explicitly enabled.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		DRM:  DRMSettings{Enabled: false},
		Scan: ScanSettings{SkipHidden: true},
	}
}
