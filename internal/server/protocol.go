// Package server translates between the JSON wire protocol and the
// coordinator's command/event vocabulary.
package server

import (
	"encoding/json"
	"fmt"

	"github.com/parlorchat/parlor/internal/coordinator"
)

// envelope is the framing used in both directions on the wire:
// {"event": "<name>", "data": {...}}.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound event names accepted from clients.
const (
	eventIdentify           = "identify"
	eventJoinRoom           = "join_room"
	eventLeaveRoom          = "leave_room"
	eventSendMessage        = "send_message"
	eventSendPrivateMessage = "send_private_message"
	eventSetTyping          = "set_typing"
	eventMarkRead           = "mark_read"
	eventReact              = "react"
)

type identifyPayload struct {
	DisplayName string `json:"displayName"`
}

type roomPayload struct {
	Room string `json:"room"`
}

type sendMessagePayload struct {
	Body       string                  `json:"body"`
	Room       string                  `json:"room"`
	Attachment *coordinator.Attachment `json:"attachment"`
}

type privateMessagePayload struct {
	ToConnectionID string                  `json:"toConnectionId"`
	Body           string                  `json:"body"`
	Attachment     *coordinator.Attachment `json:"attachment"`
}

type typingPayload struct {
	Room     string `json:"room"`
	IsTyping bool   `json:"isTyping"`
}

type markReadPayload struct {
	MessageID uint64 `json:"messageId"`
}

type reactPayload struct {
	MessageID uint64 `json:"messageId"`
	Kind      string `json:"kind"`
}

// decodeCommand parses one raw wire frame into a coordinator command.
func decodeCommand(raw []byte) (coordinator.Command, error) {
	var frame envelope
	if err := json.Unmarshal(raw, &frame); err != nil {
		return coordinator.Command{}, fmt.Errorf("malformed frame: %w", err)
	}

	switch frame.Event {
	case eventIdentify:
		var p identifyPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return coordinator.Command{}, fmt.Errorf("malformed %s payload: %w", frame.Event, err)
		}
		return coordinator.Command{Kind: coordinator.CommandIdentify, DisplayName: p.DisplayName}, nil

	case eventJoinRoom:
		var p roomPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return coordinator.Command{}, fmt.Errorf("malformed %s payload: %w", frame.Event, err)
		}
		return coordinator.Command{Kind: coordinator.CommandJoinRoom, Room: p.Room}, nil

	case eventLeaveRoom:
		var p roomPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return coordinator.Command{}, fmt.Errorf("malformed %s payload: %w", frame.Event, err)
		}
		return coordinator.Command{Kind: coordinator.CommandLeaveRoom, Room: p.Room}, nil

	case eventSendMessage:
		var p sendMessagePayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return coordinator.Command{}, fmt.Errorf("malformed %s payload: %w", frame.Event, err)
		}
		return coordinator.Command{
			Kind:       coordinator.CommandSendMessage,
			Room:       p.Room,
			Body:       p.Body,
			Attachment: p.Attachment,
		}, nil

	case eventSendPrivateMessage:
		var p privateMessagePayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return coordinator.Command{}, fmt.Errorf("malformed %s payload: %w", frame.Event, err)
		}
		return coordinator.Command{
			Kind:       coordinator.CommandSendPrivateMessage,
			ToConnID:   p.ToConnectionID,
			Body:       p.Body,
			Attachment: p.Attachment,
		}, nil

	case eventSetTyping:
		var p typingPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return coordinator.Command{}, fmt.Errorf("malformed %s payload: %w", frame.Event, err)
		}
		return coordinator.Command{Kind: coordinator.CommandSetTyping, Room: p.Room, IsTyping: p.IsTyping}, nil

	case eventMarkRead:
		var p markReadPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return coordinator.Command{}, fmt.Errorf("malformed %s payload: %w", frame.Event, err)
		}
		return coordinator.Command{Kind: coordinator.CommandMarkRead, MessageID: p.MessageID}, nil

	case eventReact:
		var p reactPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return coordinator.Command{}, fmt.Errorf("malformed %s payload: %w", frame.Event, err)
		}
		return coordinator.Command{Kind: coordinator.CommandReact, MessageID: p.MessageID, ReactionKind: p.Kind}, nil

	default:
		return coordinator.Command{}, fmt.Errorf("unknown event %q", frame.Event)
	}
}

// encodeEvent marshals one outbound event into its wire frame.
func encodeEvent(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", event, err)
	}
	return json.Marshal(envelope{Event: event, Data: data})
}
