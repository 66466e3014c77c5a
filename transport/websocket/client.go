package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Generous enough for a full
	// passage relayed through text-update.
	maxMessageSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Race clients are served from arbitrary origins
		return true
	},
}

// Client is the server-side handle for one live connection. Its room state
// is mutated only by its own read goroutine, so no locking is needed there;
// delivery to the client goes through the buffered send channel drained by a
// single writer goroutine, which preserves per-sender FIFO order.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   string

	// current room identifier, "" while unjoined; owned by readPump
	room string

	// mu guards closed. Relays run on other connections' goroutines and may
	// hold a membership snapshot taken before this client disconnected, so
	// sends must be fenced against the channel close.
	mu     sync.Mutex
	closed bool
}

// ID implements room.Member.
func (c *Client) ID() string { return c.id }

// Send implements room.Member. It never blocks: if the client has
// disconnected or its send buffer is full, the frame is dropped and Send
// reports false.
func (c *Client) Send(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel exactly once. Later Send calls report
// failure instead of panicking on the closed channel.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ServeWS upgrades an HTTP request to a websocket connection and starts the
// client's pump goroutines.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
		id:   uuid.NewString(),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump reads inbound envelopes and dispatches them sequentially. One
// goroutine per connection; events for the same connection are never
// processed concurrently. Exiting performs the implicit leave.
func (c *Client) readPump() {
	defer func() {
		if c.room != "" {
			c.hub.registry.Release(c, c.room)
			c.room = ""
		}
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var env Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			log.Printf("Dropping malformed frame from %s: %v", c.id, err)
			continue
		}
		c.handleEvent(env)
	}
}

// writePump writes outbound frames and keepalive pings. One goroutine per
// connection; the single writer keeps delivery ordered.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
