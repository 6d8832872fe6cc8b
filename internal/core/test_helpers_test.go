package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/roomcast/roomcast-server/internal/store"
)

// stubStore is an in-memory message store for hub tests. Hub
// persistence runs on spawned goroutines, so access is locked.
type stubStore struct {
	mu         sync.Mutex
	messages   map[string][]*store.Message
	failInsert bool
}

func newStubStore() *stubStore {
	return &stubStore{messages: make(map[string][]*store.Message)}
}

func (s *stubStore) InsertMessage(_ context.Context, msg *store.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInsert {
		return errors.New("store unavailable")
	}
	stored := *msg
	s.messages[msg.RoomID] = append(s.messages[msg.RoomID], &stored)
	return nil
}

func (s *stubStore) ListMessages(_ context.Context, roomID string) ([]*store.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*store.Message, len(s.messages[roomID]))
	copy(out, s.messages[roomID])
	return out, nil
}

func (s *stubStore) count(roomID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages[roomID])
}

// mustEvent waits for the next event of the wanted kind, discarding
// events of other kinds along the way.
func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// mustNoEvent asserts that no event of the given kind arrives within
// the window.
func mustNoEvent(t *testing.T, ch <-chan *Event, kind EventKind, window time.Duration) {
	t.Helper()

	deadline := time.Now().Add(window)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event: %+v", ev)
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func countName(names []string, want string) int {
	n := 0
	for _, name := range names {
		if name == want {
			n++
		}
	}
	return n
}
