// Package coordinator keeps the bounded per-room message logs and assigns
// globally unique message identifiers.
package coordinator

import "sync"

// DefaultHistoryCap is the number of messages retained per room before the
// oldest entries are evicted.
const DefaultHistoryCap = 100

// Store holds one bounded, ordered message log per room. Identifier
// assignment is atomic and monotonic across every room, which lets read
// receipts and reactions reference a message without knowing its room.
type Store struct {
	mu       sync.Mutex
	nextID   uint64
	logs     map[string][]*Message
	capacity int
}

// NewStore creates a store whose room logs hold at most capacity messages.
// A capacity of zero or less falls back to DefaultHistoryCap.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultHistoryCap
	}
	return &Store{
		logs:     make(map[string][]*Message),
		capacity: capacity,
	}
}

// Append assigns the next identifier to the record, appends it to the room's
// log, and evicts the oldest entry if the log exceeds the capacity bound.
// It returns a copy of the stored record with the identifier filled in.
func (s *Store) Append(room string, record Message) Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	record.Room = room
	record.ID = s.nextID
	if record.ReadBy == nil {
		record.ReadBy = []string{}
	}
	if record.Reactions == nil {
		record.Reactions = map[string][]string{}
	}

	stored := record
	logEntries := append(s.logs[room], &stored)
	if len(logEntries) > s.capacity {
		logEntries = logEntries[len(logEntries)-s.capacity:]
	}
	s.logs[room] = logEntries

	return stored.clone()
}

// History returns up to limit messages from the room's log, oldest-first.
// When beforeID is non-zero only messages strictly older than it are
// returned, which supports backward pagination. A limit of zero or less
// returns nothing.
func (s *Store) History(room string, beforeID uint64, limit int) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		return []Message{}
	}

	logEntries := s.logs[room]
	end := len(logEntries)
	if beforeID > 0 {
		for end > 0 && logEntries[end-1].ID >= beforeID {
			end--
		}
	}

	start := end - limit
	if start < 0 {
		start = 0
	}

	out := make([]Message, 0, end-start)
	for _, msg := range logEntries[start:end] {
		out = append(out, msg.clone())
	}
	return out
}

// FindByID returns a copy of the message with the given identifier. It scans
// every room, private conversation logs included, since identifiers are
// unique system-wide.
func (s *Store) FindByID(id uint64) (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.findLocked(id)
	if msg == nil {
		return Message{}, false
	}
	return msg.clone(), true
}

// findLocked locates the live record for an identifier. Callers must hold
// the store lock.
func (s *Store) findLocked(id uint64) *Message {
	for _, logEntries := range s.logs {
		// Logs are id-ascending, so binary search would work, but room
		// logs are capped at the capacity bound and this is cold path.
		for _, msg := range logEntries {
			if msg.ID == id {
				return msg
			}
		}
	}
	return nil
}
