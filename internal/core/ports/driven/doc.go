// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - IndexStore: Media index persistence (SQLite)
//   - FileProbe: Content sniffing and metadata reads
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - DrmBackend: DRM decoder sessions. Without it, DCF files are indexed
//     with no recovered metadata.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or probe package
package driven
