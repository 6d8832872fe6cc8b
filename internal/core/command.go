package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinRoom subscribes the client to a room under a display name.
	CommandJoinRoom CommandKind = iota
	// CommandSendMessage delivers a chat message to room participants.
	CommandSendMessage
)

// Command represents an action requested by a client.
type Command struct {
	Kind    CommandKind
	Room    string
	User    string
	Message Message
}
