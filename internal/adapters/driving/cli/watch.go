package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediaindex/internal/adapters/driving/watch"
	"github.com/custodia-labs/mediaindex/internal/core/ports/driving"
	"github.com/custodia-labs/mediaindex/internal/core/services"
	"github.com/custodia-labs/mediaindex/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Keep the index in sync with a directory",
	Long: `Watch scans dir once, then rescans files as they are created, changed
or removed until interrupted. With --rescan-interval the whole directory is
also rescanned periodically to catch events the watcher missed.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var (
	watchSkipInitial    bool
	watchRescanInterval time.Duration
)

func init() {
	watchCmd.Flags().BoolVar(&watchSkipInitial, "no-initial-scan", false, "Skip the initial directory scan")
	watchCmd.Flags().DurationVar(&watchRescanInterval, "rescan-interval", 0,
		"Rescan the whole directory at this interval (0 disables)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if scanService == nil {
		return errors.New("scan service not configured")
	}

	skipHidden := true
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			skipHidden = settings.Scan.SkipHidden
		}
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The watcher and the periodic rescans write to one index.
	scanner := services.NewSerialScanService(scanService)

	root := args[0]
	if !watchSkipInitial {
		result, err := scanner.ScanDirectory(ctx, root)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", root, err)
		}
		cmd.Printf("Scanned %s: %d inserted, %d updated, %d removed\n",
			root, result.Inserted, result.Updated, result.Removed)
	}

	w, err := watch.New(scanner, root, skipHidden)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	defer w.Close()

	if watchRescanInterval > 0 {
		defer startRescans(ctx, scanner, watchRescanInterval, root)()
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", root)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// startRescans runs periodic rescans of root in the background and returns
// a func that stops them.
func startRescans(ctx context.Context, scanner driving.ScanService, interval time.Duration, root string) func() {
	rescans := services.NewRescanScheduler(scanner, interval, root)
	go func() {
		if err := rescans.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("watch: periodic rescan stopped: %v", err)
		}
	}()
	return rescans.Stop
}
