package websocket

import (
	"log"

	"github.com/pairtype/pairtype-server/game/room"
	"github.com/pairtype/pairtype-server/game/text"
)

// Hub tracks live connections and performs all cross-connection delivery.
// Room membership itself lives in the registry; the hub's client set covers
// every connection, joined or not.
type Hub struct {
	registry *room.Registry
	provider text.Provider

	// Registered clients
	clients map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client
}

// NewHub creates a hub over the given registry and passage provider. The
// provider may be nil when no generator is configured; set-text then fails
// with the usual gateway error.
func NewHub(registry *room.Registry, provider text.Provider) *Hub {
	return &Hub{
		registry:   registry,
		provider:   provider,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's connection-lifecycle loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.clients[client] = true
	log.Printf("Client %s connected (total clients: %d)", client.id, len(h.clients))
}

func (h *Hub) unregisterClient(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.closeSend()
		log.Printf("Client %s disconnected (total clients: %d)", client.id, len(h.clients))
	}
}

// RelayToOthers delivers an event to every room member except the sender.
// A missing room or an absent peer is silently tolerated; a peer whose send
// buffer is full has the frame dropped (delivery is at-most-once).
func (h *Hub) RelayToOthers(sender *Client, roomID, event string, data any) {
	frame, err := marshalEnvelope(event, data, 0)
	if err != nil {
		log.Printf("Failed to marshal %s relay: %v", event, err)
		return
	}

	for _, m := range h.registry.Members(roomID) {
		if m.ID() == sender.id {
			continue
		}
		if !m.Send(frame) {
			log.Printf("Dropped %s frame for slow client %s", event, m.ID())
		}
	}
}

// Broadcast delivers an event to every member of the room, sender included.
func (h *Hub) Broadcast(roomID, event string, data any) {
	frame, err := marshalEnvelope(event, data, 0)
	if err != nil {
		log.Printf("Failed to marshal %s broadcast: %v", event, err)
		return
	}

	for _, m := range h.registry.Members(roomID) {
		if !m.Send(frame) {
			log.Printf("Dropped %s frame for slow client %s", event, m.ID())
		}
	}
}
