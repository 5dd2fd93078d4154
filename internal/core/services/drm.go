package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/mediaindex/internal/core/domain"
	"github.com/custodia-labs/mediaindex/internal/core/ports/driven"
	"github.com/custodia-labs/mediaindex/internal/logger"
)

// DrmSessionState is the lifecycle state of a DrmResolver's decoder session.
type DrmSessionState int

// Session states.
const (
	DrmSessionUninitialized DrmSessionState = iota
	DrmSessionActive
	DrmSessionReleased
)

// String returns the string representation.
func (s DrmSessionState) String() string {
	switch s {
	case DrmSessionActive:
		return "active"
	case DrmSessionReleased:
		return "released"
	default:
		return "uninitialized"
	}
}

// HeaderDecoder reads image dimensions from the start of an image stream
// without decoding pixels.
type HeaderDecoder func(r io.Reader) (width, height int, err error)

// DrmResolver recovers the original mime type and image dimensions of DRM
// container files. One resolver serves one scan batch on one goroutine:
// the decoder session is opened lazily on the first DCF file and kept until
// Release is called at the end of the batch.
type DrmResolver struct {
	enabled        bool
	backend        driven.DrmBackend
	decodeHeader   HeaderDecoder
	session        driven.DrmSession
	state          DrmSessionState
	sessionsOpened int
}

// NewDrmResolver creates a resolver. When enabled is false or backend is nil,
// every resolution returns no result without touching the backend.
func NewDrmResolver(enabled bool, backend driven.DrmBackend) *DrmResolver {
	return &DrmResolver{
		enabled:      enabled,
		backend:      backend,
		decodeHeader: DecodeImageHeader,
	}
}

// WithHeaderDecoder replaces the image header decoder.
func (r *DrmResolver) WithHeaderDecoder(decode HeaderDecoder) *DrmResolver {
	r.decodeHeader = decode
	return r
}

// State returns the session lifecycle state.
func (r *DrmResolver) State() DrmSessionState {
	return r.state
}

// SessionsOpened returns how many decoder sessions this resolver created.
func (r *DrmResolver) SessionsOpened() int {
	return r.sessionsOpened
}

// Resolve extracts DRM metadata from path. The boolean is false on every
// early exit: DRM disabled, empty path, non-DCF extension, no session,
// unsupported file or missing original mime type.
func (r *DrmResolver) Resolve(ctx context.Context, path string) (*domain.DrmExtractionResult, bool) {
	if !r.enabled || r.backend == nil {
		logger.Debug("drm: disabled, skipping %s", path)
		return nil, false
	}
	if !IsDrmContainer(path) {
		return nil, false
	}

	session, err := r.ensureSession(ctx)
	if err != nil {
		logger.Warn("drm: %v", err)
		return nil, false
	}

	if !session.CanHandle(path) {
		logger.Debug("drm: decoder cannot handle %s", path)
		return nil, false
	}

	mimeType, ok := session.OriginalMimeType(path)
	if !ok || mimeType == "" {
		logger.Debug("drm: no original mime type for %s", path)
		return nil, false
	}
	logger.Debug("drm: original mime type %s for %s", mimeType, path)

	result := &domain.DrmExtractionResult{OriginalMimeType: mimeType}
	if domain.IsImageMime(mimeType) {
		width, height, err := r.imageBounds(session, path)
		switch {
		case err != nil:
			logger.Debug("drm: image bounds unavailable for %s: %v", path, err)
		case width > 0 && height > 0:
			result.Width = width
			result.Height = height
		}
	}
	return result, true
}

// Release closes the decoder session. It is a no-op unless a session is active.
func (r *DrmResolver) Release() error {
	if r.state != DrmSessionActive {
		return nil
	}
	session := r.session
	r.session = nil
	r.state = DrmSessionReleased
	logger.Debug("drm: releasing decoder session")
	if err := session.Close(); err != nil {
		return fmt.Errorf("close drm session: %w", err)
	}
	return nil
}

func (r *DrmResolver) ensureSession(ctx context.Context) (driven.DrmSession, error) {
	if r.state == DrmSessionActive {
		return r.session, nil
	}
	session, err := r.backend.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDecoderUnavailable, err)
	}
	if session == nil {
		return nil, domain.ErrDecoderUnavailable
	}
	r.session = session
	r.state = DrmSessionActive
	r.sessionsOpened++
	logger.Debug("drm: opened decoder session")
	return session, nil
}

// imageBounds decodes the payload header. Failures of any kind, including
// panics in the decoder, are reported as an error.
func (r *DrmResolver) imageBounds(session driven.DrmSession, path string) (width, height int, err error) {
	defer func() {
		if p := recover(); p != nil {
			width, height = 0, 0
			err = fmt.Errorf("decoding image header: %v", p)
		}
	}()

	handle, err := session.OpenDecryptHandle(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open decrypt handle: %w", err)
	}
	if handle == nil {
		return 0, 0, nil
	}
	defer handle.Close()

	return r.decodeHeader(handle)
}

// IsDrmContainer returns true if path has the DCF extension, ignoring case.
func IsDrmContainer(path string) bool {
	if path == "" {
		return false
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return strings.EqualFold(ext, domain.DRMExtension)
}
