// Package server implements the HTTP and WebSocket transport shell around
// the Parlor coordinator.
//
// The implementation is organized into specialized files for configuration,
// hub management, clients, protocol decoding, routing, and HTTP handlers to
// keep the codebase maintainable and testable as the project grows.
package server
