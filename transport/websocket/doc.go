// Package websocket provides the realtime transport for the typing race.
//
// The package implements:
//   - Persistent bidirectional connections with acknowledgements
//   - The per-connection session state machine (unjoined / joined)
//   - Relaying of chat, lifecycle, and text events between room peers
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model. The Hub tracks every live
// connection and performs all cross-connection delivery; room membership is
// kept in the room registry. Each client connection runs two goroutines: a
// read pump that processes inbound events strictly in order, and a write
// pump that drains the client's buffered send channel, preserving FIFO
// delivery per sender.
//
// Message Protocol:
//
// Messages are JSON envelopes in both directions:
//   - Incoming: {"event": "join-room", "data": "abcd", "ack": 1}
//   - Outgoing: {"event": "receive-message", "data": "hello"}
//   - Acks:     {"event": "ack", "ack": 1, "data": {"success": "..."}}
//
// A client requests an acknowledgement by sending a non-zero ack id;
// fire-and-forget signals (start, end, loading, done-loading) omit it.
//
// Usage:
//
//	hub := websocket.NewHub(room.NewRegistry(), provider)
//	go hub.Run()
//	http.HandleFunc("/ws", hub.ServeWS)
//
// Concurrency:
//
// Events for one connection are never processed concurrently; across
// connections only the room registry is shared, and it serializes per room.
// One connection failing or disconnecting never affects another beyond the
// peer-notification side effects of leaving its room.
package websocket
