// Package coordinator implements the in-memory presence and messaging model
// for the Parlor chat server.
//
// The implementation is organized into specialized files for sessions, rooms,
// the message store, typing state, annotations, and command dispatch to keep
// the codebase maintainable and testable as the project grows. The package
// has no knowledge of the transport layer: inbound commands arrive through
// Dispatch and every effect is returned as an explicit batch of outbound
// events for the caller to deliver.
package coordinator
