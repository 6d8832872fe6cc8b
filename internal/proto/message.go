package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoin = "join"
	InboundTypeMsg  = "msg"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventNameMessage = "message"
	EventNameMembers = "members"
	EventNameHistory = "history"
)

// JoinData requests to join a room under a display name.
type JoinData struct {
	Room string `json:"room"`
	User string `json:"user,omitempty"`
}

// MsgData is a chat message from the client. Text and ImageURL are
// both optional; a message with neither is dropped.
type MsgData struct {
	Room     string `json:"room"`
	User     string `json:"user,omitempty"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// EventMessage is a stored chat message pushed to room participants.
type EventMessage struct {
	ID       string `json:"id"`
	Room     string `json:"room"`
	User     string `json:"user"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	TS       int64  `json:"ts"`
}

// EventMembers carries the current roster of a room. Names repeat
// when two connections declared the same display name.
type EventMembers struct {
	Room    string   `json:"room"`
	Members []string `json:"members"`
}

// EventHistory delivers a room's message history to a joining client.
type EventHistory struct {
	Room     string         `json:"room"`
	Messages []EventMessage `json:"messages"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
