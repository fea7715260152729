// Package coordinator aggregates per-room typing indicators.
package coordinator

import (
	"sort"
	"sync"
)

// TypingSet records which connections are currently signaling "typing" in
// each room. The set owns no timers: typing stops only on an explicit stop
// signal from the participant's own debounce timer, or when the connection
// disappears.
type TypingSet struct {
	mu     sync.Mutex
	byRoom map[string]map[string]string // room -> connection id -> display name
}

// NewTypingSet creates an empty typing aggregator.
func NewTypingSet() *TypingSet {
	return &TypingSet{byRoom: make(map[string]map[string]string)}
}

// SetTyping inserts or removes the connection's display name under the room
// depending on isTyping.
func (t *TypingSet) SetTyping(connID, room, displayName string, isTyping bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	names, ok := t.byRoom[room]
	if !ok {
		if !isTyping {
			return
		}
		names = make(map[string]string)
		t.byRoom[room] = names
	}

	if isTyping {
		names[connID] = displayName
	} else {
		delete(names, connID)
	}
}

// Names returns a sorted snapshot of the display names typing in a room.
func (t *TypingSet) Names(room string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	names := make([]string, 0, len(t.byRoom[room]))
	for _, name := range t.byRoom[room] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ClearConnection removes the connection from every room's typing set and
// returns the rooms it was actually typing in, so the caller can refresh
// those rooms' indicators.
func (t *TypingSet) ClearConnection(connID string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var affected []string
	for room, names := range t.byRoom {
		if _, ok := names[connID]; ok {
			delete(names, connID)
			affected = append(affected, room)
		}
	}
	sort.Strings(affected)
	return affected
}
