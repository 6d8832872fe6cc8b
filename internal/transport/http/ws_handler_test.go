package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/roomcast/roomcast-server/internal/config"
	"github.com/roomcast/roomcast-server/internal/core"
	"github.com/roomcast/roomcast-server/internal/proto"
	"github.com/roomcast/roomcast-server/internal/store/sqlite"
	"github.com/roomcast/roomcast-server/internal/upload"
)

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	server, _ := newTestServer(t)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

// readEvent skips frames until one with the wanted event name arrives.
func readEvent(t *testing.T, ctx context.Context, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()

	for {
		var outbound struct {
			Type  string          `json:"type"`
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			t.Fatalf("read outbound waiting for %s: %v", event, err)
		}
		if outbound.Type == proto.OutboundTypeEvent && outbound.Event == event {
			return outbound.Data
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestWebSocketJoinAndMessage(t *testing.T) {
	ts := startTestServer(t)

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"

	ctx, closeCtx := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCtx()

	connA, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial A: %v", err)
	}
	defer connA.Close(websocket.StatusNormalClosure, "done")

	connB, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial B: %v", err)
	}
	defer connB.Close(websocket.StatusNormalClosure, "done")

	sendJoin := func(conn *websocket.Conn, room, user string) {
		payload, _ := json.Marshal(proto.JoinData{Room: room, User: user})
		_ = wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeJoin, Data: payload})
	}

	sendMsg := func(conn *websocket.Conn, room, user, text string) {
		payload, _ := json.Marshal(proto.MsgData{Room: room, User: user, Text: text})
		_ = wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeMsg, Data: payload})
	}

	sendJoin(connA, "general", "alice")

	// Joiner privately receives the room history, empty for a fresh room.
	var history proto.EventHistory
	if err := json.Unmarshal(readEvent(t, ctx, connA, proto.EventNameHistory), &history); err != nil {
		t.Fatalf("unmarshal history: %v", err)
	}
	if history.Room != "general" || len(history.Messages) != 0 {
		t.Fatalf("unexpected history: %+v", history)
	}

	sendJoin(connB, "general", "bob")

	// Both connections see the two-member roster.
	var members proto.EventMembers
	if err := json.Unmarshal(readEvent(t, ctx, connA, proto.EventNameMembers), &members); err != nil {
		t.Fatalf("unmarshal members: %v", err)
	}
	if len(members.Members) != 2 {
		t.Fatalf("unexpected roster: %+v", members)
	}

	sendMsg(connA, "general", "alice", "hi there")

	var event proto.EventMessage
	if err := json.Unmarshal(readEvent(t, ctx, connB, proto.EventNameMessage), &event); err != nil {
		t.Fatalf("unmarshal event data: %v", err)
	}
	if event.User != "alice" || event.Text != "hi there" || event.Room != "general" {
		t.Fatalf("unexpected event payload: %+v", event)
	}
	if event.ID == "" || event.TS == 0 {
		t.Fatalf("expected server-assigned id and timestamp: %+v", event)
	}

	// The sender receives its own message through the broadcast too.
	if err := json.Unmarshal(readEvent(t, ctx, connA, proto.EventNameMessage), &event); err != nil {
		t.Fatalf("unmarshal sender echo: %v", err)
	}
	if event.Text != "hi there" {
		t.Fatalf("unexpected sender echo: %+v", event)
	}
}

func TestWebSocketDisconnectUpdatesRoster(t *testing.T) {
	ts := startTestServer(t)

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"

	ctx, closeCtx := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCtx()

	connA, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial A: %v", err)
	}
	defer connA.Close(websocket.StatusNormalClosure, "done")

	connB, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial B: %v", err)
	}

	join := func(conn *websocket.Conn, user string) {
		payload, _ := json.Marshal(proto.JoinData{Room: "general", User: user})
		_ = wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeJoin, Data: payload})
	}

	join(connA, "alice")
	join(connB, "bob")

	var members proto.EventMembers
	for len(members.Members) != 2 {
		if err := json.Unmarshal(readEvent(t, ctx, connA, proto.EventNameMembers), &members); err != nil {
			t.Fatalf("unmarshal members: %v", err)
		}
	}

	connB.Close(websocket.StatusNormalClosure, "bye")

	if err := json.Unmarshal(readEvent(t, ctx, connA, proto.EventNameMembers), &members); err != nil {
		t.Fatalf("unmarshal members: %v", err)
	}
	if len(members.Members) != 1 || members.Members[0] != "alice" {
		t.Fatalf("unexpected roster after disconnect: %+v", members)
	}
}

func TestWebSocketClosesWhenHubStopped(t *testing.T) {
	testStore, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { testStore.Close() })

	uploads, err := upload.NewLocalStorage(t.TempDir(), "http://localhost:8080")
	if err != nil {
		t.Fatalf("failed to create upload storage: %v", err)
	}

	hub := core.NewHub(testStore, nil)
	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	disabledLogger := zerolog.Nop()
	cfg := config.Default()
	cfg.Addr = ":0"

	ts := httptest.NewServer(NewServer(hub, testStore, uploads, &cfg, &disabledLogger).Handler)
	t.Cleanup(ts.Close)

	stopHub()
	<-hub.Done()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"

	ctx, closeCtx := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCtx()

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	// With the hub gone nothing drains the client's command buffer.
	// Push more frames than the buffer holds; the server must close
	// the connection instead of wedging in the read loop forever.
	payload, _ := json.Marshal(proto.JoinData{Room: "general", User: "alice"})
	for i := 0; i < 20; i++ {
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeJoin, Data: payload}); err != nil {
			return // server already shut the connection
		}
	}

	var outbound proto.Outbound
	if err := wsjson.Read(ctx, conn, &outbound); err == nil {
		t.Fatalf("expected the connection to be closed, got frame %+v", outbound)
	}
}

func TestWebSocketBadEnvelope(t *testing.T) {
	ts := startTestServer(t)

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"

	ctx, closeCtx := context.WithTimeout(context.Background(), 3*time.Second)
	defer closeCtx()

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	payload, _ := json.Marshal(proto.JoinData{})
	if writeErr := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeJoin, Data: payload}); writeErr != nil {
		t.Fatalf("send join: %v", writeErr)
	}

	var outbound proto.Outbound
	if err := wsjson.Read(ctx, conn, &outbound); err != nil {
		t.Fatalf("read outbound: %v", err)
	}
	if outbound.Type != proto.OutboundTypeError || outbound.Error == nil {
		t.Fatalf("expected protocol error, got %+v", outbound)
	}
}
