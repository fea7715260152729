// Package coordinator routes inbound commands to the owning component and
// computes the outbound fan-out for each one.
package coordinator

import (
	"log"
	"time"
)

// Dispatch applies one inbound command from a connection and returns the
// outbound events it produced, each with an explicit audience. The state
// mutation is complete before Dispatch returns, so a slow recipient during
// delivery can never affect shared state.
//
// Commands arriving before the connection has identified are rejected with
// an ErrorNotice and mutate nothing; commands referencing unknown sessions
// or messages are logged and produce no events.
func (c *Coordinator) Dispatch(connID string, cmd Command) []Outbound {
	switch cmd.Kind {
	case CommandIdentify:
		return c.identify(connID, cmd.DisplayName)
	case CommandJoinRoom:
		return c.joinRoom(connID, cmd.Room)
	case CommandLeaveRoom:
		return c.leaveRoom(connID, cmd.Room)
	case CommandSendMessage:
		return c.sendRoomMessage(connID, cmd)
	case CommandSendPrivateMessage:
		return c.sendPrivateMessage(connID, cmd)
	case CommandSetTyping:
		return c.setTyping(connID, cmd.Room, cmd.IsTyping)
	case CommandMarkRead:
		return c.markRead(connID, cmd.MessageID)
	case CommandReact:
		return c.react(connID, cmd.MessageID, cmd.ReactionKind)
	case CommandDisconnect:
		return c.disconnect(connID)
	default:
		log.Printf("Dropping unknown command kind %d from %s", cmd.Kind, connID)
		return nil
	}
}

// notice builds the single-event rejection batch for a connection.
func notice(connID, reason string) []Outbound {
	return []Outbound{toConns(EventErrorNotice, ErrorNotice{Reason: reason}, connID)}
}

// requireSession resolves the connection's session or produces the
// invalid-transition rejection.
func (c *Coordinator) requireSession(connID string) (Session, []Outbound) {
	session, ok := c.sessions.Lookup(connID)
	if !ok {
		return Session{}, notice(connID, "identify first")
	}
	return session, nil
}

func (c *Coordinator) identify(connID, displayName string) []Outbound {
	if displayName == "" {
		return notice(connID, "display name must not be empty")
	}
	if _, ok := c.sessions.Lookup(connID); ok {
		return notice(connID, "already identified")
	}

	session, err := c.sessions.Register(connID, displayName)
	if err != nil {
		log.Printf("Registering %s as %q failed: %v", connID, displayName, err)
		return notice(connID, "already identified")
	}

	c.rooms.EnsureRoom(DefaultRoom)
	c.rooms.Join(connID, DefaultRoom)
	log.Printf("%s identified as %q", connID, displayName)

	return []Outbound{
		toAll(EventPresenceList, c.sessions.ListActive()),
		toAll(EventPresenceJoined, PresenceChange{DisplayName: session.DisplayName, ConnID: connID}),
	}
}

func (c *Coordinator) joinRoom(connID, room string) []Outbound {
	if _, rejected := c.requireSession(connID); rejected != nil {
		return rejected
	}
	if room == "" {
		return notice(connID, "room name must not be empty")
	}

	c.rooms.EnsureRoom(room)
	c.rooms.Join(connID, room)

	// Joins are silent for everyone else: only message traffic, never
	// membership, is announced for rooms.
	return []Outbound{
		toConns(EventRoomJoined, RoomRef{Room: room}, connID),
		toConns(EventRoomHistory, RoomHistory{
			Room:     room,
			Messages: c.store.History(room, 0, c.store.capacity),
		}, connID),
	}
}

func (c *Coordinator) leaveRoom(connID, room string) []Outbound {
	if _, rejected := c.requireSession(connID); rejected != nil {
		return rejected
	}

	c.rooms.Leave(connID, room)
	return []Outbound{toConns(EventRoomLeft, RoomRef{Room: room}, connID)}
}

func (c *Coordinator) sendRoomMessage(connID string, cmd Command) []Outbound {
	session, rejected := c.requireSession(connID)
	if rejected != nil {
		return rejected
	}

	record := Message{
		Sender:     session.DisplayName,
		SenderID:   connID,
		Body:       cmd.Body,
		Attachment: cmd.Attachment,
		Timestamp:  time.Now(),
	}
	if !record.hasContent() {
		return notice(connID, "message needs a body or an attachment")
	}

	room := cmd.Room
	if room == "" {
		room = DefaultRoom
	}
	c.rooms.EnsureRoom(room)
	stored := c.store.Append(room, record)

	members := c.rooms.MembersOf(room)
	if len(members) == 0 {
		return nil
	}
	return []Outbound{toConns(EventRoomMessage, stored, members...)}
}

func (c *Coordinator) sendPrivateMessage(connID string, cmd Command) []Outbound {
	session, rejected := c.requireSession(connID)
	if rejected != nil {
		return rejected
	}

	recipient, ok := c.sessions.Lookup(cmd.ToConnID)
	if !ok {
		log.Printf("Private message from %s to unknown connection %q dropped", connID, cmd.ToConnID)
		return nil
	}

	record := Message{
		Sender:     session.DisplayName,
		SenderID:   connID,
		Body:       cmd.Body,
		Attachment: cmd.Attachment,
		Timestamp:  time.Now(),
		Private:    true,
	}
	if !record.hasContent() {
		return notice(connID, "message needs a body or an attachment")
	}

	room := PrivateRoomName(session.DisplayName, recipient.DisplayName)
	c.rooms.EnsureRoom(room)
	// Both participants become members of the conversation room so later
	// annotation broadcasts can be scoped to exactly this pair.
	c.rooms.Join(connID, room)
	c.rooms.Join(cmd.ToConnID, room)
	stored := c.store.Append(room, record)

	// Delivery is direct-address, not membership-gated: exactly the sender
	// and the addressed recipient receive the record.
	targets := []string{connID}
	if cmd.ToConnID != connID {
		targets = append(targets, cmd.ToConnID)
	}
	return []Outbound{toConns(EventPrivateMessage, stored, targets...)}
}

func (c *Coordinator) setTyping(connID, room string, isTyping bool) []Outbound {
	session, rejected := c.requireSession(connID)
	if rejected != nil {
		return rejected
	}

	if room == "" {
		room = DefaultRoom
	}
	c.rooms.EnsureRoom(room)
	c.typing.SetTyping(connID, room, session.DisplayName, isTyping)

	members := c.rooms.MembersOf(room)
	if len(members) == 0 {
		return nil
	}
	return []Outbound{toConns(EventTypingNames, TypingNames{
		Room:  room,
		Names: c.typing.Names(room),
	}, members...)}
}

func (c *Coordinator) markRead(connID string, messageID uint64) []Outbound {
	session, rejected := c.requireSession(connID)
	if rejected != nil {
		return rejected
	}

	msg, added := c.annotations.MarkRead(messageID, session.DisplayName)
	if !added {
		// Unknown ids and repeat readers are both silent.
		return nil
	}

	receipt := ReadReceipt{MessageID: messageID, Reader: session.DisplayName}
	return []Outbound{c.scopeToMessage(msg, EventReadReceipt, receipt)}
}

func (c *Coordinator) react(connID string, messageID uint64, kind string) []Outbound {
	session, rejected := c.requireSession(connID)
	if rejected != nil {
		return rejected
	}
	if kind == "" {
		return notice(connID, "reaction kind must not be empty")
	}

	msg, added := c.annotations.AddReaction(messageID, kind, session.DisplayName)
	if !added {
		return nil
	}

	update := ReactionUpdate{MessageID: messageID, Kind: kind, Reactor: session.DisplayName}
	return []Outbound{c.scopeToMessage(msg, EventReactionUpdate, update)}
}

// scopeToMessage addresses an annotation event. Annotations on private
// messages stay between the two participants; everything else is globally
// visible, mirroring the room-agnostic message identifier space.
func (c *Coordinator) scopeToMessage(msg Message, event string, payload any) Outbound {
	if msg.Private {
		return toConns(event, payload, c.rooms.MembersOf(msg.Room)...)
	}
	return toAll(event, payload)
}

func (c *Coordinator) disconnect(connID string) []Outbound {
	session, ok := c.sessions.Lookup(connID)
	if !ok {
		// Connections that never identified leave nothing behind.
		return nil
	}

	c.sessions.Unregister(connID)
	typingRooms := c.typing.ClearConnection(connID)
	c.rooms.RemoveConnectionEverywhere(connID)
	log.Printf("%s (%q) disconnected", connID, session.DisplayName)

	events := []Outbound{
		toAll(EventPresenceLeft, PresenceChange{DisplayName: session.DisplayName, ConnID: connID}),
		toAll(EventPresenceList, c.sessions.ListActive()),
	}
	for _, room := range typingRooms {
		members := c.rooms.MembersOf(room)
		if len(members) == 0 {
			continue
		}
		events = append(events, toConns(EventTypingNames, TypingNames{
			Room:  room,
			Names: c.typing.Names(room),
		}, members...))
	}
	return events
}
