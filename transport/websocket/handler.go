package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/pairtype/pairtype-server/game/room"
)

// handleEvent dispatches one inbound envelope. It runs on the connection's
// read goroutine, so events for a single connection are handled strictly in
// order and c.room needs no locking.
func (c *Client) handleEvent(env Envelope) {
	switch env.Event {
	case EventJoinRoom:
		c.handleJoinRoom(env)
	case EventSendMessage:
		c.handleSendMessage(env)
	case EventLeaveRoom:
		c.handleLeaveRoom(env)
	case EventStart, EventEnd, EventLoading, EventDoneLoading:
		c.handleSignal(env.Event)
	case EventSetText:
		c.handleSetText(env)
	case EventTextUpdate:
		c.handleTextUpdate(env)
	default:
		log.Printf("Client %s sent unknown event %q", c.id, env.Event)
	}
}

// handleJoinRoom admits the connection to a room, leaving its current room
// first if it has one. The capacity pre-check runs before the old room is
// released so a doomed join does not cost the player their current seat;
// admission itself is still atomic, so a lost race acks "Room is full".
func (c *Client) handleJoinRoom(env Envelope) {
	var roomID string
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &roomID); err != nil {
			c.ack(env.Ack, AckPayload{Error: "Name length should be 4"})
			return
		}
	}

	if len(roomID) != room.IDLength {
		c.ack(env.Ack, AckPayload{Error: "Name length should be 4"})
		return
	}
	if c.hub.registry.Count(roomID) >= room.Capacity {
		c.ack(env.Ack, AckPayload{Error: "Room is full"})
		return
	}

	if c.room != "" {
		c.hub.registry.Release(c, c.room)
		log.Printf("Client %s left room %s", c.id, c.room)
		c.room = ""
	}

	if err := c.hub.registry.Admit(c, roomID); err != nil {
		if errors.Is(err, room.ErrRoomFull) {
			c.ack(env.Ack, AckPayload{Error: "Room is full"})
		} else {
			c.ack(env.Ack, AckPayload{Error: "Name length should be 4"})
		}
		return
	}

	c.room = roomID
	log.Printf("Client %s joined room %s", c.id, roomID)
	c.ack(env.Ack, AckPayload{Success: "Successfully joined room"})
}

// handleSendMessage relays a chat payload to the other occupant(s).
func (c *Client) handleSendMessage(env Envelope) {
	if c.room == "" || emptyPayload(env.Data) {
		c.ack(env.Ack, AckPayload{Error: "Must join a room and provide a message"})
		return
	}

	c.hub.RelayToOthers(c, c.room, EventReceiveMessage, env.Data)
	c.ack(env.Ack, AckPayload{Success: "Message sent successfully"})
}

// handleLeaveRoom releases the connection's membership. It always
// acknowledges; leaving while unjoined is an idempotent no-op.
func (c *Client) handleLeaveRoom(env Envelope) {
	if c.room != "" {
		c.hub.registry.Release(c, c.room)
		log.Printf("Client %s left room %s", c.id, c.room)
		c.room = ""
	}
	c.ack(env.Ack, AckPayload{Success: "Successfully left room"})
}

// handleSignal relays a zero-payload lifecycle signal (start, end, loading,
// done-loading) to the other occupant. Silent no-op while unjoined.
func (c *Client) handleSignal(event string) {
	if c.room == "" {
		return
	}
	c.hub.RelayToOthers(c, c.room, event, nil)
}

// handleSetText fetches a fresh passage and broadcasts it to the whole room,
// sender included. The provider call blocks only this connection's read
// loop, bounded by the provider's timeout.
func (c *Client) handleSetText(env Envelope) {
	if c.room == "" {
		c.ack(env.Ack, AckPayload{Error: "Must join a room"})
		return
	}
	if c.hub.provider == nil {
		c.ack(env.Ack, AckPayload{Error: "Failed to fetch text"})
		return
	}

	passage, err := c.hub.provider.Passage(context.Background())
	if err != nil {
		log.Printf("Passage fetch for room %s failed: %v", c.room, err)
		c.ack(env.Ack, AckPayload{Error: "Failed to fetch text"})
		return
	}

	c.hub.Broadcast(c.room, EventTextUpdate, TextPayload{
		Text:    passage,
		Success: "Text set successfully",
	})
	c.ack(env.Ack, AckPayload{Success: "Text set successfully", Text: passage})
}

// handleTextUpdate relays a client-distributed passage verbatim to the
// other occupant. Silent no-op while unjoined.
func (c *Client) handleTextUpdate(env Envelope) {
	if c.room == "" {
		return
	}
	c.hub.RelayToOthers(c, c.room, EventTextUpdate, env.Data)
}

// ack sends an acknowledgement frame when the client asked for one.
func (c *Client) ack(ackID uint64, payload AckPayload) {
	if ackID == 0 {
		return
	}
	frame, err := marshalEnvelope(EventAck, payload, ackID)
	if err != nil {
		log.Printf("Failed to marshal ack: %v", err)
		return
	}
	if !c.Send(frame) {
		log.Printf("Dropped ack frame for slow client %s", c.id)
	}
}
