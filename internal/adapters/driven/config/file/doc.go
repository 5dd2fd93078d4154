// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//
// Keys are addressed in dot notation ("drm.enabled") and written back as
// nested TOML tables:
//
//	[drm]
//	enabled = true
//	keyring = "/home/user/.mediaindex/keyring.toml"
package file
