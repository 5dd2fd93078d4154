package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a record for the path already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnscopedDelete indicates a delete was requested with an empty filter.
	// Deleting the whole index must be spelled out by the caller.
	ErrUnscopedDelete = errors.New("delete requires a filter")

	// DRM Errors.

	// ErrDecoderUnavailable indicates the DRM decoder backend could not open a session.
	// Resolution degrades to "no DRM metadata".
	ErrDecoderUnavailable = errors.New("drm decoder unavailable")

	// ErrSessionReleased indicates a DRM session was used after Close.
	ErrSessionReleased = errors.New("drm session released")

	// ErrMalformedContainer indicates a DCF file could not be parsed.
	ErrMalformedContainer = errors.New("malformed drm container")
)
