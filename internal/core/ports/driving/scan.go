package driving

import "context"

// ScanResult summarises one scan batch.
type ScanResult struct {
	// BatchID identifies the batch in logs.
	BatchID string

	// Inserted and Updated count records written to the index.
	Inserted int
	Updated  int

	// Removed counts stale records whose files no longer exist.
	Removed int

	// Skipped counts files that were not indexed.
	Skipped int

	// DRMResolved counts DCF files whose original mime type was recovered.
	DRMResolved int
}

// ScanService indexes files from the filesystem.
type ScanService interface {
	// ScanDirectory indexes every file under root as one batch and removes
	// records whose files have disappeared.
	ScanDirectory(ctx context.Context, root string) (*ScanResult, error)

	// ScanFile indexes a single file as its own batch.
	ScanFile(ctx context.Context, path string) (*ScanResult, error)

	// EnsureDefaultDirectories creates the standard public directories
	// under a volume root.
	EnsureDefaultDirectories(root string) error
}
