// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The index rules live here: capture-mode classification on the scan path,
// mime overrides, DRM metadata resolution and burst-set repair on delete.
//
// Services are pure Go with no CGO.
package services
