package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pairtype/pairtype-server/game/room"
	"github.com/pairtype/pairtype-server/game/text"
)

func TestNewHub(t *testing.T) {
	hub := NewHub(room.NewRegistry(), nil)

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.clients == nil {
		t.Error("Hub clients map is nil")
	}
	if hub.register == nil {
		t.Error("Hub register channel is nil")
	}
	if hub.unregister == nil {
		t.Error("Hub unregister channel is nil")
	}
}

func TestHubRegisterAndUnregisterClient(t *testing.T) {
	hub := newTestHub(nil)
	client := newTestClient(hub)

	hub.registerClient(client)
	if !hub.clients[client] {
		t.Error("client was not registered")
	}

	hub.unregisterClient(client)
	if _, exists := hub.clients[client]; exists {
		t.Error("client was not removed")
	}
	if _, open := <-client.send; open {
		t.Error("send channel should be closed after unregister")
	}

	// Unregistering twice must not close the channel again
	hub.unregisterClient(client)
}

func TestSendToDisconnectedPeerIsDropped(t *testing.T) {
	hub := newTestHub(nil)
	x := newTestClient(hub)
	y := newTestClient(hub)
	join(t, x, "abcd")
	join(t, y, "abcd")
	hub.registerClient(y)

	// A relay on another connection's goroutine may hold a membership
	// snapshot taken before the peer disconnected; delivering through that
	// snapshot after the hub tore the peer down must drop the frame, not
	// crash the process.
	members := hub.registry.Members("abcd")

	hub.registry.Release(y, "abcd")
	hub.unregisterClient(y)

	frame, err := marshalEnvelope(EventStart, nil, 0)
	if err != nil {
		t.Fatalf("failed to marshal frame: %v", err)
	}
	for _, m := range members {
		if m.ID() == x.id {
			continue
		}
		if m.Send(frame) {
			t.Error("send to a disconnected peer should report failure")
		}
	}
}

func TestRelayToOthersToleratesAbsentRoom(t *testing.T) {
	hub := newTestHub(nil)
	c := newTestClient(hub)

	// Nobody is in this room; the relay delivers to no one and must not panic
	hub.RelayToOthers(c, "zzzz", EventStart, nil)
	hub.Broadcast("zzzz", EventTextUpdate, TextPayload{Text: "x", Success: "y"})
}

// --- end-to-end tests over real connections ---

func startRaceServer(t *testing.T, provider text.Provider) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(room.NewRegistry(), provider)
	go hub.Run()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dialServer(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendEvent(t *testing.T, conn *websocket.Conn, event string, data any, ackID uint64) {
	t.Helper()
	frame, err := marshalEnvelope(event, data, ackID)
	if err != nil {
		t.Fatalf("failed to marshal %s: %v", event, err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("failed to send %s: %v", event, err)
	}
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read frame: %v", err)
	}
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		t.Fatalf("malformed frame %s: %v", msg, err)
	}
	return env
}

func readAck(t *testing.T, conn *websocket.Conn, wantID uint64) AckPayload {
	t.Helper()
	env := readEnvelope(t, conn)
	if env.Event != EventAck || env.Ack != wantID {
		t.Fatalf("got event %q ack %d, want ack %d", env.Event, env.Ack, wantID)
	}
	var payload AckPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("malformed ack payload: %v", err)
	}
	return payload
}

func joinRoom(t *testing.T, conn *websocket.Conn, roomID string) {
	t.Helper()
	sendEvent(t, conn, EventJoinRoom, roomID, 1)
	if ack := readAck(t, conn, 1); ack.Success != "Successfully joined room" {
		t.Fatalf("join %q ack = %+v", roomID, ack)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestEndToEndMessageRelay(t *testing.T) {
	_, srv := startRaceServer(t, nil)

	x := dialServer(t, srv)
	y := dialServer(t, srv)
	joinRoom(t, x, "abcd")
	joinRoom(t, y, "abcd")

	sendEvent(t, x, EventSendMessage, "hello", 2)

	if ack := readAck(t, x, 2); ack.Success != "Message sent successfully" {
		t.Errorf("sender ack = %+v, want success", ack)
	}

	env := readEnvelope(t, y)
	if env.Event != EventReceiveMessage {
		t.Errorf("peer event = %q, want %q", env.Event, EventReceiveMessage)
	}
	var message string
	if err := json.Unmarshal(env.Data, &message); err != nil || message != "hello" {
		t.Errorf("peer payload = %s, want \"hello\"", env.Data)
	}
}

func TestEndToEndRoomFull(t *testing.T) {
	_, srv := startRaceServer(t, nil)

	joinRoom(t, dialServer(t, srv), "abcd")
	joinRoom(t, dialServer(t, srv), "abcd")

	third := dialServer(t, srv)
	sendEvent(t, third, EventJoinRoom, "abcd", 1)
	if ack := readAck(t, third, 1); ack.Error != "Room is full" {
		t.Errorf("third join ack = %+v, want room full", ack)
	}
}

func TestEndToEndDisconnectReleasesSeat(t *testing.T) {
	hub, srv := startRaceServer(t, nil)

	x := dialServer(t, srv)
	y := dialServer(t, srv)
	joinRoom(t, x, "abcd")
	joinRoom(t, y, "abcd")

	x.Close()
	waitFor(t, "disconnect to release the seat", func() bool {
		return hub.registry.Count("abcd") == 1
	})

	// The freed seat is immediately available
	joinRoom(t, dialServer(t, srv), "abcd")
}

func TestEndToEndSetTextTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(`{"text":"too late"}`))
	}))
	t.Cleanup(slow.Close)

	provider := text.NewRemoteProvider(slow.URL, 50*time.Millisecond)
	_, srv := startRaceServer(t, provider)

	x := dialServer(t, srv)
	y := dialServer(t, srv)
	joinRoom(t, x, "abcd")
	joinRoom(t, y, "abcd")

	sendEvent(t, x, EventSetText, nil, 2)
	if ack := readAck(t, x, 2); ack.Error != "Failed to fetch text" {
		t.Errorf("set-text ack = %+v, want fetch failure", ack)
	}

	// No text-update is broadcast on a gateway timeout
	y.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, msg, err := y.ReadMessage(); err == nil {
		t.Errorf("peer unexpectedly received %s", msg)
	}
}
