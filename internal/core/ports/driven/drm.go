package driven

import (
	"context"
	"io"
)

// DrmBackend creates decoder sessions for DRM content containers.
// Session setup is expensive, so callers keep one session per scan batch.
type DrmBackend interface {
	// Open creates a new decoder session.
	Open(ctx context.Context) (DrmSession, error)
}

// DrmSession is an open decoder session. It is not safe for concurrent use.
type DrmSession interface {
	// CanHandle reports whether the session understands the file.
	CanHandle(path string) bool

	// OriginalMimeType returns the mime type of the wrapped payload.
	// The boolean is false when the container does not declare one.
	OriginalMimeType(path string) (string, bool)

	// OpenDecryptHandle returns a reader over the decrypted payload.
	// A nil reader with a nil error means no handle is available.
	OpenDecryptHandle(path string) (io.ReadCloser, error)

	// Close releases the session.
	Close() error
}
