package core

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roomcast/roomcast-server/internal/store"
)

// DefaultDisplayName is used when a client joins without declaring a name.
const DefaultDisplayName = "Guest"

type clientCommand struct {
	client *Client
	cmd    *Command
}

// Hub is the single-writer owner of all live session state: which
// clients exist, which rooms they occupy, and under what display
// names. All mutation happens on the Run goroutine; persistence and
// history reads run on spawned goroutines whose results are
// re-injected through the completions channel, so broadcast and
// roster updates always execute on the hub's turn.
//
// A consequence worth knowing: broadcast order within a room follows
// the order in which persistence calls complete, not the order in
// which sends were issued. Stored timestamps still reflect submission
// order.
type Hub struct {
	store store.MessageStore
	log   *zerolog.Logger

	register    chan *Client
	unregister  chan *Client
	commands    chan clientCommand
	completions chan func()
	done        chan struct{}

	clients  map[string]*Client
	rooms    map[string]*room
	byClient map[*Client]map[string]struct{}
}

// NewHub creates a hub backed by the given message store.
func NewHub(st store.MessageStore, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		store:       st,
		log:         logger,
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		commands:    make(chan clientCommand),
		completions: make(chan func(), 16),
		done:        make(chan struct{}),
		clients:     make(map[string]*Client),
		rooms:       make(map[string]*room),
		byClient:    make(map[*Client]map[string]struct{}),
	}
}

// Done is closed when the hub loop has exited. Callers feeding the hub
// can select on it to avoid blocking on a stopped hub.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// RegisterClient adds a client and starts pumping its commands into
// the hub loop.
func (h *Hub) RegisterClient(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		return
	}
	go func() {
		for cmd := range c.Commands {
			select {
			case h.commands <- clientCommand{client: c, cmd: cmd}:
			case <-h.done:
				return
			}
		}
	}()
}

// UnregisterClient removes a client from every room it occupied.
// Safe to call for clients that were never registered.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Run processes hub traffic until the context is cancelled. It must
// be running before clients are registered.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c.ID] = c
		case c := <-h.unregister:
			h.dropClient(c)
		case cc := <-h.commands:
			h.dispatch(ctx, cc.client, cc.cmd)
		case fn := <-h.completions:
			fn()
		}
	}
}

func (h *Hub) dispatch(ctx context.Context, c *Client, cmd *Command) {
	// Commands buffered at disconnect time can arrive after the
	// unregister; ignore traffic from clients that are already gone.
	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	switch cmd.Kind {
	case CommandJoinRoom:
		h.handleJoin(ctx, c, cmd)
	case CommandSendMessage:
		h.handleSend(ctx, c, cmd)
	}
}

// handleJoin records membership, pushes the new roster to the whole
// room, and kicks off a private history load for the joiner. Unknown
// room ids are not rejected; they simply yield an empty history.
func (h *Hub) handleJoin(ctx context.Context, c *Client, cmd *Command) {
	roomID := strings.TrimSpace(cmd.Room)
	if roomID == "" {
		return
	}
	name := strings.TrimSpace(cmd.User)
	if name == "" {
		name = DefaultDisplayName
	}

	r, ok := h.rooms[roomID]
	if !ok {
		r = newRoom(roomID)
		h.rooms[roomID] = r
	}
	r.join(c, name)

	if _, ok := h.byClient[c]; !ok {
		h.byClient[c] = make(map[string]struct{})
	}
	h.byClient[c][roomID] = struct{}{}

	h.log.Debug().Str("client_id", c.ID).Str("room_id", roomID).Str("name", name).Msg("client joined room")

	r.broadcast(&Event{Kind: EventRoster, Room: roomID, Names: r.roster()})

	go func() {
		records, err := h.store.ListMessages(ctx, roomID)
		h.complete(ctx, func() {
			if err != nil {
				h.log.Warn().Err(err).Str("room_id", roomID).Msg("load history")
				records = nil
			}
			if _, alive := h.clients[c.ID]; !alive {
				return
			}
			messages := make([]Message, 0, len(records))
			for _, rec := range records {
				messages = append(messages, fromRecord(rec))
			}
			c.send(&Event{Kind: EventHistory, Room: roomID, Messages: messages})
		})
	}()
}

// handleSend runs the ingest-persist-broadcast pipeline. Invalid
// messages are dropped without feedback; a message is broadcast if
// and only if its persistence succeeded. On persistence failure the
// sender alone gets an error event, so no client ever sees a message
// that is not durably stored.
func (h *Hub) handleSend(ctx context.Context, c *Client, cmd *Command) {
	text := strings.TrimSpace(cmd.Message.Text)
	imageURL := strings.TrimSpace(cmd.Message.ImageURL)
	roomID := strings.TrimSpace(cmd.Room)

	if roomID == "" || (text == "" && imageURL == "") {
		h.log.Debug().Str("client_id", c.ID).Str("room_id", roomID).Msg("dropping invalid message")
		return
	}

	from := strings.TrimSpace(cmd.User)
	if from == "" {
		from = DefaultDisplayName
	}

	msg := Message{
		ID:        uuid.NewString(),
		Room:      roomID,
		From:      from,
		Text:      text,
		ImageURL:  imageURL,
		CreatedAt: time.Now().UTC(),
	}
	rec := toRecord(msg)

	go func() {
		err := h.store.InsertMessage(ctx, rec)
		h.complete(ctx, func() {
			if err != nil {
				h.log.Error().Err(err).Str("room_id", roomID).Str("msg_id", msg.ID).Msg("persist message")
				if _, alive := h.clients[c.ID]; alive {
					c.send(&Event{Kind: EventError, Room: roomID, Error: &EngineError{
						Code:    ErrCodePersistFailed,
						Message: "message could not be saved",
					}})
				}
				return
			}
			// Broadcast to whoever is in the room now, which may
			// differ from the membership at submission time.
			if r, ok := h.rooms[roomID]; ok {
				r.broadcast(&Event{Kind: EventRoomMessage, Room: roomID, Message: msg})
			}
		})
	}()
}

// dropClient removes a client from every room it was in and pushes a
// fresh roster to each affected room, once per room.
func (h *Hub) dropClient(c *Client) {
	for roomID := range h.byClient[c] {
		r, ok := h.rooms[roomID]
		if !ok {
			continue
		}
		if !r.leave(c) {
			continue
		}
		if r.empty() {
			delete(h.rooms, roomID)
			continue
		}
		r.broadcast(&Event{Kind: EventRoster, Room: roomID, Names: r.roster()})
	}
	delete(h.byClient, c)
	delete(h.clients, c.ID)
	h.log.Debug().Str("client_id", c.ID).Msg("client dropped")
}

// complete hands a closure back to the hub loop.
func (h *Hub) complete(ctx context.Context, fn func()) {
	select {
	case h.completions <- fn:
	case <-ctx.Done():
	}
}

func toRecord(msg Message) *store.Message {
	return &store.Message{
		ID:        msg.ID,
		RoomID:    msg.Room,
		UserName:  msg.From,
		Text:      msg.Text,
		ImageURL:  msg.ImageURL,
		CreatedAt: msg.CreatedAt,
	}
}

func fromRecord(rec *store.Message) Message {
	return Message{
		ID:        rec.ID,
		Room:      rec.RoomID,
		From:      rec.UserName,
		Text:      rec.Text,
		ImageURL:  rec.ImageURL,
		CreatedAt: rec.CreatedAt,
	}
}
