// Command mediaindex scans media volumes into a local SQLite index.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/mediaindex/internal/adapters/driven/config/file"
	"github.com/custodia-labs/mediaindex/internal/adapters/driven/drm/dcf"
	"github.com/custodia-labs/mediaindex/internal/adapters/driven/probe"
	"github.com/custodia-labs/mediaindex/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/mediaindex/internal/adapters/driving/cli"
	"github.com/custodia-labs/mediaindex/internal/core/services"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	configDir, err := file.DefaultDir()
	if err != nil {
		return fmt.Errorf("resolving config directory: %w", err)
	}
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}

	dataDir := settings.Index.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(configDir, "data")
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}
	defer store.Close()

	mediaService := services.NewMediaService(store.IndexStore())
	scanService := services.NewScanService(
		mediaService,
		probe.NewProbe(),
		dcf.NewBackend(settings.DRM.Keyring),
		*settings,
	)
	mediaService.SetRescanner(scanService)

	cli.SetVersion(version)
	cli.SetServices(scanService, mediaService, settingsService)
	// Cobra has already printed the error.
	if err := cli.Execute(); err != nil {
		store.Close()
		os.Exit(1)
	}
	return nil
}
