// Package domain defines the core business entities for mediaindex.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - CaptureMode: The closed taxonomy of camera capture codes
//   - IndexRecord: One indexed media file
//   - RecordFilter: Selection of index records, also used as a burst scope
//   - DrmExtractionResult: Metadata recovered from a DRM container
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
