// Package coordinator defines the message record shared by the store,
// annotation tracker, and dispatch logic.
package coordinator

import "time"

// Attachment is an inline file payload carried by a message. The data field
// holds the encoded payload exactly as the sending client produced it; the
// coordinator never inspects it.
type Attachment struct {
	Name      string `json:"name"`
	MediaType string `json:"mediaType"`
	Data      string `json:"data"`
}

// Message is a single chat message record. Identifiers are unique across the
// whole system and strictly increasing, so they double as a recency ordering.
// A record is immutable after creation except for ReadBy and Reactions,
// which only ever grow.
type Message struct {
	ID         uint64              `json:"id"`
	Sender     string              `json:"sender"`
	SenderID   string              `json:"senderId"`
	Body       string              `json:"body,omitempty"`
	Attachment *Attachment         `json:"attachment,omitempty"`
	Timestamp  time.Time           `json:"timestamp"`
	Room       string              `json:"room"`
	Private    bool                `json:"isPrivate,omitempty"`
	ReadBy     []string            `json:"readBy"`
	Reactions  map[string][]string `json:"reactions"`
}

// clone returns a deep copy of the message so callers can marshal or inspect
// it without holding the store lock.
func (m *Message) clone() Message {
	out := *m
	out.ReadBy = append([]string(nil), m.ReadBy...)
	out.Reactions = make(map[string][]string, len(m.Reactions))
	for kind, reactors := range m.Reactions {
		out.Reactions[kind] = append([]string(nil), reactors...)
	}
	if m.Attachment != nil {
		att := *m.Attachment
		out.Attachment = &att
	}
	return out
}

// hasContent reports whether the message carries a body or an attachment.
func (m *Message) hasContent() bool {
	return m.Body != "" || m.Attachment != nil
}
