// Package coordinator defines the command and event vocabulary exchanged
// with the transport layer.
package coordinator

// CommandKind enumerates the inbound operations a connection can request.
type CommandKind int

// Inbound command kinds, one per transport event.
const (
	CommandIdentify CommandKind = iota
	CommandJoinRoom
	CommandLeaveRoom
	CommandSendMessage
	CommandSendPrivateMessage
	CommandSetTyping
	CommandMarkRead
	CommandReact
	CommandDisconnect
)

// Command is one inbound operation from a connection. Only the fields
// relevant to the kind are populated.
type Command struct {
	Kind         CommandKind
	DisplayName  string      // identify
	Room         string      // join_room, leave_room, send_message, set_typing
	Body         string      // send_message, send_private_message
	Attachment   *Attachment // send_message, send_private_message
	ToConnID     string      // send_private_message
	IsTyping     bool        // set_typing
	MessageID    uint64      // mark_read, react
	ReactionKind string      // react
}

// Outbound event names as they appear on the wire.
const (
	EventPresenceList   = "presence_list"
	EventPresenceJoined = "presence_joined"
	EventPresenceLeft   = "presence_left"
	EventRoomJoined     = "room_joined"
	EventRoomLeft       = "room_left"
	EventRoomHistory    = "room_history"
	EventRoomMessage    = "room_message"
	EventPrivateMessage = "private_message"
	EventTypingNames    = "typing_names"
	EventReadReceipt    = "read_receipt"
	EventReactionUpdate = "reaction_update"
	EventErrorNotice    = "error_notice"
)

// Outbound pairs one event payload with its audience. When All is set the
// event goes to every connected participant; otherwise it goes to exactly
// the listed connections.
type Outbound struct {
	Event   string
	Payload any
	All     bool
	ConnIDs []string
}

// toAll builds an outbound event addressed to every participant.
func toAll(event string, payload any) Outbound {
	return Outbound{Event: event, Payload: payload, All: true}
}

// toConns builds an outbound event addressed to specific connections.
func toConns(event string, payload any, connIDs ...string) Outbound {
	return Outbound{Event: event, Payload: payload, ConnIDs: connIDs}
}

// PresenceChange announces a participant joining or leaving.
type PresenceChange struct {
	DisplayName string `json:"displayName"`
	ConnID      string `json:"connectionId"`
}

// RoomRef acknowledges a join or leave back to the requester.
type RoomRef struct {
	Room string `json:"room"`
}

// RoomHistory carries a room's recent messages to the requester.
type RoomHistory struct {
	Room     string    `json:"room"`
	Messages []Message `json:"messages"`
}

// TypingNames carries the current typing indicator set for a room.
type TypingNames struct {
	Room  string   `json:"room"`
	Names []string `json:"names"`
}

// ReadReceipt announces that a reader has seen a message.
type ReadReceipt struct {
	MessageID uint64 `json:"messageId"`
	Reader    string `json:"reader"`
}

// ReactionUpdate announces a new reaction on a message.
type ReactionUpdate struct {
	MessageID uint64 `json:"messageId"`
	Kind      string `json:"kind"`
	Reactor   string `json:"reactor"`
}

// ErrorNotice is the user-facing rejection sent back to a connection whose
// command could not be accepted. No state is mutated when one is produced.
type ErrorNotice struct {
	Reason string `json:"reason"`
}
