// Package room provides room membership management for the typing race.
//
// The room package implements:
//   - Thread-safe admission and release of connections
//   - The 4-character room identifier rule
//   - The two-player capacity limit
//   - Implicit room lifecycle (a room exists exactly while it has members)
//
// Core Types:
//
// Registry is the shared membership map. Member is the narrow interface a
// connection must satisfy to be admitted; the registry never depends on the
// transport.
//
// Room Identifiers:
//
// Rooms use 4-character tokens chosen by the players. The registry validates
// only the length; the character set and casing are left to the clients.
//
// Concurrency:
//
// The registry is safe for concurrent use. The room map is guarded by a
// registry-level lock while each room entry has its own mutex, so admits and
// releases on different rooms do not contend. Two simultaneous admits on a
// full room can never both succeed.
//
// Usage:
//
//	reg := room.NewRegistry()
//
//	if err := reg.Admit(conn, "abcd"); err != nil {
//		// room full or bad identifier
//	}
//
//	for _, m := range reg.Members("abcd") {
//		m.Send(frame)
//	}
//
//	reg.Release(conn, "abcd")
package room
