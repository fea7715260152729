// Package coordinator maintains the room directory: the set of known rooms
// and which connections are members of each.
package coordinator

import (
	"sort"
	"strings"
	"sync"
)

// DefaultRoom is the room every participant is joined to at identify time.
// It always exists.
const DefaultRoom = "global"

// privateRoomPrefix marks rooms that model a direct conversation between two
// display names. Private rooms are excluded from room listings.
const privateRoomPrefix = "private_"

// PrivateRoomName derives the room name for a direct conversation between
// two display names. The names are sorted before joining, so both
// participants address the same room regardless of who initiates.
func PrivateRoomName(nameA, nameB string) string {
	if nameB < nameA {
		nameA, nameB = nameB, nameA
	}
	return privateRoomPrefix + nameA + "_" + nameB
}

// IsPrivateRoom reports whether a room name denotes a direct conversation.
func IsPrivateRoom(room string) bool {
	return strings.HasPrefix(room, privateRoomPrefix)
}

// Directory tracks which rooms exist and which connections belong to each.
// Rooms are created lazily and never destroyed; an empty room persists
// because any participant may return to it.
type Directory struct {
	mu      sync.RWMutex
	members map[string]map[string]struct{} // room -> connection ids
	joined  map[string]map[string]struct{} // connection id -> rooms
}

// NewDirectory creates a directory containing only the default room.
func NewDirectory() *Directory {
	d := &Directory{
		members: make(map[string]map[string]struct{}),
		joined:  make(map[string]map[string]struct{}),
	}
	d.members[DefaultRoom] = make(map[string]struct{})
	return d
}

// EnsureRoom creates the room if it does not exist yet. Idempotent.
func (d *Directory) EnsureRoom(room string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensureLocked(room)
}

func (d *Directory) ensureLocked(room string) map[string]struct{} {
	set, ok := d.members[room]
	if !ok {
		set = make(map[string]struct{})
		d.members[room] = set
	}
	return set
}

// Join adds a connection to a room, creating the room if absent. Joining a
// room twice is a no-op.
func (d *Directory) Join(connID, room string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.ensureLocked(room)[connID] = struct{}{}
	rooms, ok := d.joined[connID]
	if !ok {
		rooms = make(map[string]struct{})
		d.joined[connID] = rooms
	}
	rooms[room] = struct{}{}
}

// Leave removes a connection from a room. Unknown rooms and non-members are
// a no-op.
func (d *Directory) Leave(connID, room string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if set, ok := d.members[room]; ok {
		delete(set, connID)
	}
	if rooms, ok := d.joined[connID]; ok {
		delete(rooms, room)
	}
}

// IsMember reports whether a connection currently belongs to a room.
func (d *Directory) IsMember(connID, room string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.members[room][connID]
	return ok
}

// MembersOf returns a snapshot of the connection ids currently in a room.
func (d *Directory) MembersOf(room string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	set := d.members[room]
	members := make([]string, 0, len(set))
	for connID := range set {
		members = append(members, connID)
	}
	return members
}

// RoomNames returns the sorted names of all known non-private rooms.
func (d *Directory) RoomNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.members))
	for room := range d.members {
		if IsPrivateRoom(room) {
			continue
		}
		names = append(names, room)
	}
	sort.Strings(names)
	return names
}

// RemoveConnectionEverywhere strips a connection from every room it joined
// and returns the affected room names. Used on disconnect.
func (d *Directory) RemoveConnectionEverywhere(connID string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	rooms := d.joined[connID]
	affected := make([]string, 0, len(rooms))
	for room := range rooms {
		if set, ok := d.members[room]; ok {
			delete(set, connID)
		}
		affected = append(affected, room)
	}
	delete(d.joined, connID)
	sort.Strings(affected)
	return affected
}
