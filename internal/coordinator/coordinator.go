// Package coordinator assembles the session registry, room directory,
// message store, typing aggregator, and annotation tracker behind one
// Coordinator handle.
package coordinator

// Coordinator is the authoritative in-memory model of sessions, rooms,
// message history, and ephemeral aggregates. One instance is constructed at
// process start and passed by handle to whatever needs it; there is no
// ambient global state, so tests build isolated instances freely.
//
// Each component owns its own lock and every mutation is a short critical
// section, so Coordinator methods are safe to call from one goroutine per
// connection. Fan-out never happens inside a mutation: Dispatch completes
// every state change before returning the outbound batch for delivery.
type Coordinator struct {
	sessions    *Registry
	rooms       *Directory
	store       *Store
	typing      *TypingSet
	annotations *Tracker
}

// New creates a coordinator whose room logs hold at most historyCap
// messages. The default room exists from the start.
func New(historyCap int) *Coordinator {
	store := NewStore(historyCap)
	return &Coordinator{
		sessions:    NewRegistry(),
		rooms:       NewDirectory(),
		store:       store,
		typing:      NewTypingSet(),
		annotations: NewTracker(store),
	}
}

// PresenceList returns the current sessions ordered by join time. This is a
// side-effect-free snapshot for the pull-style query API.
func (c *Coordinator) PresenceList() []Session {
	return c.sessions.ListActive()
}

// RoomNames returns the sorted names of all known non-private rooms.
func (c *Coordinator) RoomNames() []string {
	return c.rooms.RoomNames()
}

// History returns up to limit messages from a room, oldest-first, strictly
// older than beforeID when it is non-zero.
func (c *Coordinator) History(room string, beforeID uint64, limit int) []Message {
	return c.store.History(room, beforeID, limit)
}

// TypingNames returns the sorted display names currently typing in a room.
func (c *Coordinator) TypingNames(room string) []string {
	return c.typing.Names(room)
}
