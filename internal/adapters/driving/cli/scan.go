package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediaindex/internal/core/ports/driving"
)

var scanCmd = &cobra.Command{
	Use:   "scan [path...]",
	Short: "Scan files or directories into the index",
	Long: `Scan indexes every file under each directory as one batch and removes
records whose files have disappeared. A file argument is scanned alone.

With --init the standard public directories (Music, Pictures, DCIM, ...)
are created under each path first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

var (
	scanInit bool
	scanJSON bool
)

func init() {
	scanCmd.Flags().BoolVar(&scanInit, "init", false, "Create the default media directories before scanning")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Print results as JSON")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanService == nil {
		return errors.New("scan service not configured")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]*driving.ScanResult, 0, len(args))
	for _, path := range args {
		if scanInit {
			if err := scanService.EnsureDefaultDirectories(path); err != nil {
				return fmt.Errorf("failed to create default directories: %w", err)
			}
		}

		info, err := os.Stat(path)
		var result *driving.ScanResult
		if err == nil && info.IsDir() {
			result, err = scanService.ScanDirectory(ctx, path)
		} else {
			result, err = scanService.ScanFile(ctx, path)
		}
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", path, err)
		}
		results = append(results, result)

		if !scanJSON {
			cmd.Printf("Scanned %s\n", path)
			cmd.Printf("  Inserted: %d\n", result.Inserted)
			cmd.Printf("  Updated:  %d\n", result.Updated)
			cmd.Printf("  Removed:  %d\n", result.Removed)
			cmd.Printf("  Skipped:  %d\n", result.Skipped)
			if result.DRMResolved > 0 {
				cmd.Printf("  DRM:      %d resolved\n", result.DRMResolved)
			}
		}
	}

	if scanJSON {
		return writeJSON(cmd, results)
	}
	return nil
}
