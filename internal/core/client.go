package core

// Client is one live connection as seen by the hub. Display names are
// not part of the client identity: they are declared per room at join
// time and live in the hub's registry.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event
}

// NewClient constructs a client with initialized channels.
func NewClient(id string) *Client {
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 32),
	}
}

// send delivers an event without blocking the hub. Slow consumers
// lose events rather than stalling the room.
func (c *Client) send(ev *Event) {
	select {
	case c.Events <- ev:
	default:
	}
}
