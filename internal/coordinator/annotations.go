// Package coordinator attaches read receipts and reactions to stored
// messages, idempotently, via the annotation tracker.
package coordinator

// Tracker grows the read-receipt set and reaction map of stored messages.
// Both operations are idempotent: annotating a message twice with the same
// display name has no additional effect, and the boolean result reports
// whether anything actually changed so callers know when a broadcast is
// warranted.
type Tracker struct {
	store *Store
}

// NewTracker creates a tracker over the given store.
func NewTracker(store *Store) *Tracker {
	return &Tracker{store: store}
}

// MarkRead records that reader has seen the message. It returns a snapshot
// of the message and true only the first time this reader is added; unknown
// messages and repeat readers return false.
func (t *Tracker) MarkRead(messageID uint64, reader string) (Message, bool) {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.findLocked(messageID)
	if msg == nil {
		return Message{}, false
	}
	for _, existing := range msg.ReadBy {
		if existing == reader {
			return Message{}, false
		}
	}
	msg.ReadBy = append(msg.ReadBy, reader)
	return msg.clone(), true
}

// AddReaction records a reaction of the given kind by reactor. Idempotency
// is keyed by (message, kind, reactor); the result contract matches
// MarkRead.
func (t *Tracker) AddReaction(messageID uint64, kind, reactor string) (Message, bool) {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.findLocked(messageID)
	if msg == nil {
		return Message{}, false
	}
	for _, existing := range msg.Reactions[kind] {
		if existing == reactor {
			return Message{}, false
		}
	}
	if msg.Reactions == nil {
		msg.Reactions = map[string][]string{}
	}
	msg.Reactions[kind] = append(msg.Reactions[kind], reactor)
	return msg.clone(), true
}
