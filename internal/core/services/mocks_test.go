package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mediaindex/internal/core/domain"
	"github.com/custodia-labs/mediaindex/internal/core/ports/driven"
	"github.com/custodia-labs/mediaindex/internal/core/ports/driving"
)

// mockScanService implements driving.ScanService for testing.
type mockScanService struct {
	mu    sync.Mutex
	dirs  []string
	files []string
	err   error
}

func (m *mockScanService) ScanDirectory(_ context.Context, root string) (*driving.ScanResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs = append(m.dirs, root)
	if m.err != nil {
		return nil, m.err
	}
	return &driving.ScanResult{Inserted: 1}, nil
}

func (m *mockScanService) ScanFile(_ context.Context, path string) (*driving.ScanResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = append(m.files, path)
	return &driving.ScanResult{}, m.err
}

func (m *mockScanService) EnsureDefaultDirectories(string) error { return nil }

func (m *mockScanService) scannedDirs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.dirs...)
}

func (m *mockScanService) scannedFiles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.files...)
}

// mockProbe implements driven.FileProbe from per-extension mime types and
// per-name metadata.
type mockProbe struct {
	captureModes map[string]int32
	captureTimes map[string]int64
	titles       map[string]string
	width        int
	height       int

	// sniffDelay slows every SniffMimeType call.
	sniffDelay time.Duration
}

var _ driven.FileProbe = (*mockProbe)(nil)

func newMockProbe() *mockProbe {
	return &mockProbe{
		captureModes: make(map[string]int32),
		captureTimes: make(map[string]int64),
		titles:       make(map[string]string),
	}
}

func (p *mockProbe) SniffMimeType(path string) string {
	if p.sniffDelay > 0 {
		time.Sleep(p.sniffDelay)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg":
		return "image/jpeg"
	case ".3gp":
		return domain.MimeVideo3GPP
	case ".mp3":
		return "audio/mpeg"
	case ".mp4":
		return "video/mp4"
	case ".dcf":
		return domain.MimeDRMContent
	default:
		return "application/octet-stream"
	}
}

func (p *mockProbe) CaptureMode(path string) (int32, bool) {
	code, ok := p.captureModes[filepath.Base(path)]
	return code, ok
}

func (p *mockProbe) CaptureTime(path string) (int64, bool) {
	ts, ok := p.captureTimes[filepath.Base(path)]
	return ts, ok
}

func (p *mockProbe) Dimensions(string, string) (int, int) {
	return p.width, p.height
}

func (p *mockProbe) Title(path, _ string) string {
	return p.titles[filepath.Base(path)]
}

// mockDrmBackend implements driven.DrmBackend and counts sessions.
type mockDrmBackend struct {
	session *mockDrmSession
	openErr error
	opened  int
}

var _ driven.DrmBackend = (*mockDrmBackend)(nil)

func (b *mockDrmBackend) Open(context.Context) (driven.DrmSession, error) {
	b.opened++
	if b.openErr != nil {
		return nil, b.openErr
	}
	return b.session, nil
}

// mockDrmSession implements driven.DrmSession keyed by file name.
type mockDrmSession struct {
	rejects   map[string]bool
	mimes     map[string]string
	payloads  map[string][]byte
	handleErr error
	closed    int
}

var _ driven.DrmSession = (*mockDrmSession)(nil)

func newMockDrmSession() *mockDrmSession {
	return &mockDrmSession{
		rejects:  make(map[string]bool),
		mimes:    make(map[string]string),
		payloads: make(map[string][]byte),
	}
}

func (s *mockDrmSession) CanHandle(path string) bool {
	return !s.rejects[filepath.Base(path)]
}

func (s *mockDrmSession) OriginalMimeType(path string) (string, bool) {
	mime, ok := s.mimes[filepath.Base(path)]
	return mime, ok
}

func (s *mockDrmSession) OpenDecryptHandle(path string) (io.ReadCloser, error) {
	if s.handleErr != nil {
		return nil, s.handleErr
	}
	payload, ok := s.payloads[filepath.Base(path)]
	if !ok {
		return nil, nil
	}
	return io.NopCloser(bytes.NewReader(payload)), nil
}

func (s *mockDrmSession) Close() error {
	s.closed++
	if s.closed > 1 {
		return errors.New("session closed twice")
	}
	return nil
}

// mockRescanner records the paths it was asked to rescan.
type mockRescanner struct {
	paths []string
	err   error
}

func (r *mockRescanner) ScanFile(_ context.Context, path string) (*driving.ScanResult, error) {
	r.paths = append(r.paths, path)
	return &driving.ScanResult{}, r.err
}

// pngBytes encodes a blank PNG of the given size.
func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

// overlapScanService is a ScanService that records the peak number of
// calls in flight at once.
type overlapScanService struct {
	inflight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
}

func (o *overlapScanService) enter() func() {
	n := o.inflight.Add(1)
	for {
		peak := o.peak.Load()
		if n <= peak || o.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	o.calls.Add(1)
	time.Sleep(time.Millisecond)
	return func() { o.inflight.Add(-1) }
}

func (o *overlapScanService) ScanDirectory(context.Context, string) (*driving.ScanResult, error) {
	defer o.enter()()
	return &driving.ScanResult{}, nil
}

func (o *overlapScanService) ScanFile(context.Context, string) (*driving.ScanResult, error) {
	defer o.enter()()
	return &driving.ScanResult{}, nil
}

func (o *overlapScanService) EnsureDefaultDirectories(string) error {
	defer o.enter()()
	return nil
}
