package core

import "time"

// Message is the domain model for a chat message. Either Text or
// ImageURL carries the payload; both may be set.
type Message struct {
	ID        string
	Room      string
	From      string
	Text      string
	ImageURL  string
	CreatedAt time.Time
}
