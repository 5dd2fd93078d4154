package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/mediaindex/internal/core/ports/driving"
	"github.com/custodia-labs/mediaindex/internal/logger"
)

// RescanRun is the outcome of one periodic rescan of a root.
type RescanRun struct {
	Root      string
	StartedAt time.Time
	EndedAt   time.Time
	Result    *driving.ScanResult
	Err       error
}

// RescanScheduler periodically rescans directory roots, catching changes a
// filesystem watcher missed. Rescans of one scheduler never overlap.
type RescanScheduler struct {
	scanner  driving.ScanService
	roots    []string
	interval time.Duration

	// onRun observes each completed rescan.
	onRun func(RescanRun)

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	last    map[string]RescanRun
}

// NewRescanScheduler creates a scheduler rescanning roots every interval.
func NewRescanScheduler(scanner driving.ScanService, interval time.Duration, roots ...string) *RescanScheduler {
	return &RescanScheduler{
		scanner:  scanner,
		roots:    roots,
		interval: interval,
		last:     make(map[string]RescanRun),
	}
}

// OnRun registers a callback invoked after every rescan.
func (s *RescanScheduler) OnRun(fn func(RescanRun)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRun = fn
}

// Start runs the rescan loop. It blocks until ctx is done or Stop is called.
// The first rescan happens one interval after Start.
func (s *RescanScheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return errors.New("rescan: interval must be positive")
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// Stop ends a running Start loop.
func (s *RescanScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
}

// RunOnce rescans every root now.
func (s *RescanScheduler) RunOnce(ctx context.Context) {
	for _, root := range s.roots {
		if ctx.Err() != nil {
			return
		}
		run := RescanRun{Root: root, StartedAt: time.Now()}
		run.Result, run.Err = s.scanner.ScanDirectory(ctx, root)
		run.EndedAt = time.Now()

		if run.Err != nil {
			logger.Warn("rescan %s: %v", root, run.Err)
		} else {
			logger.Debug("rescan %s: %d inserted, %d updated, %d removed",
				root, run.Result.Inserted, run.Result.Updated, run.Result.Removed)
		}

		s.mu.Lock()
		s.last[root] = run
		onRun := s.onRun
		s.mu.Unlock()
		if onRun != nil {
			onRun(run)
		}
	}
}

// LastRun returns the most recent rescan of root.
func (s *RescanScheduler) LastRun(root string) (RescanRun, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.last[root]
	return run, ok
}
