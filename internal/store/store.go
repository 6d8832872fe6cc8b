package store

import (
	"context"
	"time"
)

// Room is a named chat channel with a durable identity.
type Room struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Message is a persisted chat message. Text and ImageURL are both
// optional on the wire, but at least one is non-empty by the time a
// message reaches the store.
type Message struct {
	ID        string
	RoomID    string
	UserName  string
	Text      string
	ImageURL  string
	CreatedAt time.Time
}

// RoomStore handles room persistence.
type RoomStore interface {
	// GetOrCreateRoom looks a room up by exact name, creating it on miss.
	// Idempotent: two calls with the same name return the same room. The
	// flag reports whether this call created the room.
	GetOrCreateRoom(ctx context.Context, name string) (*Room, bool, error)

	// GetRoomByID retrieves a room by ID.
	GetRoomByID(ctx context.Context, id string) (*Room, error)

	// ListRooms lists rooms, newest first. A non-empty query filters by
	// case-insensitive name substring.
	ListRooms(ctx context.Context, query string) ([]*Room, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// InsertMessage appends a message to its room.
	InsertMessage(ctx context.Context, msg *Message) error

	// ListMessages returns a room's messages ascending by creation time.
	// An unknown room yields an empty slice, not an error.
	ListMessages(ctx context.Context, roomID string) ([]*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	RoomStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
