package core

// EventKind is a notification the hub emits to clients.
type EventKind int

const (
	// EventRoomMessage delivers a stored chat message to room participants.
	EventRoomMessage EventKind = iota
	// EventRoster delivers the current member names of a room.
	EventRoster
	// EventHistory delivers message history to a client upon joining a room.
	EventHistory
	// EventError notifies a single client about a failure.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind     EventKind
	Room     string
	Names    []string  // for EventRoster
	Message  Message   // for EventRoomMessage
	Messages []Message // for EventHistory
	Error    *EngineError
}
