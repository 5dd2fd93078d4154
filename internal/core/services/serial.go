package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/mediaindex/internal/core/ports/driving"
)

// Ensure SerialScanService implements the interface.
var _ driving.ScanService = (*SerialScanService)(nil)

// SerialScanService runs the scans of several callers one at a time.
// The index has a single writer: a watcher and a periodic rescan over the
// same volume must share one SerialScanService.
type SerialScanService struct {
	mu   sync.Mutex
	scan driving.ScanService
}

// NewSerialScanService wraps scan so that its calls never overlap.
func NewSerialScanService(scan driving.ScanService) *SerialScanService {
	return &SerialScanService{scan: scan}
}

// ScanDirectory runs a directory scan once no other scan is in progress.
func (s *SerialScanService) ScanDirectory(ctx context.Context, root string) (*driving.ScanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scan.ScanDirectory(ctx, root)
}

// ScanFile runs a single-file scan once no other scan is in progress.
func (s *SerialScanService) ScanFile(ctx context.Context, path string) (*driving.ScanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scan.ScanFile(ctx, path)
}

// EnsureDefaultDirectories creates the standard directories under root.
func (s *SerialScanService) EnsureDefaultDirectories(root string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scan.EnsureDefaultDirectories(root)
}
