package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change settings stored in the configuration file.

Keys:
  drm.enabled       - recover metadata from DRM containers (true/false)
  drm.keyring       - TOML file mapping content URIs to hex AES keys
  index.data_dir    - directory holding the index database
  scan.skip_hidden  - skip hidden files and directories (true/false)`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset [key]",
	Short: "Restore a setting to its default",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsReset,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	keyring := settings.DRM.Keyring
	if keyring == "" {
		keyring = "(none)"
	}
	dataDir := settings.Index.DataDir
	if dataDir == "" {
		dataDir = "(default)"
	}

	cmd.Printf("Settings (%s)\n\n", settingsService.ConfigPath())
	cmd.Printf("  drm.enabled:      %t\n", settings.DRM.Enabled)
	cmd.Printf("  drm.keyring:      %s\n", keyring)
	cmd.Printf("  index.data_dir:   %s\n", dataDir)
	cmd.Printf("  scan.skip_hidden: %t\n", settings.Scan.SkipHidden)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}
	cmd.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}

func runSettingsReset(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Reset(args[0]); err != nil {
		return fmt.Errorf("failed to reset setting: %w", err)
	}
	cmd.Printf("Reset %s\n", args[0])
	return nil
}
