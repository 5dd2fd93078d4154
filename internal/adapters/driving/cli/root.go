// Package cli implements the mediaindex command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediaindex/internal/core/ports/driving"
	"github.com/custodia-labs/mediaindex/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services used by the commands, injected by SetServices.
var (
	scanService     driving.ScanService
	mediaService    driving.MediaService
	settingsService driving.SettingsService
)

// verbose enables debug logging for every command.
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "mediaindex",
	Short: "Index photos, videos and audio on a volume",
	Long: `mediaindex scans a media volume into a local index.

It classifies camera capture modes, keeps burst sets consistent when
members are deleted, applies ringtone mime overrides and, when enabled,
recovers metadata from DRM content format containers.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug logs to stderr")
}

// SetServices injects the services used by the commands.
func SetServices(scan driving.ScanService, media driving.MediaService, settings driving.SettingsService) {
	scanService = scan
	mediaService = media
	settingsService = settings
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
