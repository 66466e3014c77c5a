package room

import (
	"errors"
	"sync"
)

// IDLength is the required length of a room identifier.
const IDLength = 4

// Capacity is the maximum number of members a room may hold.
const Capacity = 2

var (
	ErrInvalidRoomID = errors.New("room identifier must be 4 characters")
	ErrRoomFull      = errors.New("room is full")
)

// Member is the registry's view of a connection. Send must not block; it
// reports whether the frame was accepted for delivery.
type Member interface {
	ID() string
	Send(frame []byte) bool
}

// entry holds one room's membership. Its mutex serializes admits and
// releases for that room only.
type entry struct {
	mu      sync.Mutex
	members map[string]Member
}

// Registry maps room identifiers to their current members. A room exists
// exactly while it has at least one member; entries are created on first
// admit and deleted when the last member leaves.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*entry),
	}
}

// Admit adds member to the room identified by roomID. It returns
// ErrInvalidRoomID if the identifier is not exactly IDLength characters and
// ErrRoomFull if the room already holds Capacity members. Concurrent admits
// on the same room are serialized; a full room never over-admits.
func (r *Registry) Admit(m Member, roomID string) error {
	if len(roomID) != IDLength {
		return ErrInvalidRoomID
	}

	e := r.lockEntry(roomID)
	defer e.mu.Unlock()

	if len(e.members) >= Capacity {
		return ErrRoomFull
	}
	e.members[m.ID()] = m
	return nil
}

// Release removes member from the room. It is idempotent: releasing a
// member that is not present, or a room that does not exist, is a no-op.
// When the last member leaves, the room entry is deleted.
func (r *Registry) Release(m Member, roomID string) {
	r.mu.RLock()
	e, ok := r.rooms[roomID]
	r.mu.RUnlock()
	if !ok {
		return
	}

	e.mu.Lock()
	delete(e.members, m.ID())
	empty := len(e.members) == 0
	e.mu.Unlock()

	if empty {
		r.deleteIfEmpty(roomID)
	}
}

// Count returns the number of members currently admitted to roomID, or 0 if
// the room does not exist.
func (r *Registry) Count(roomID string) int {
	r.mu.RLock()
	e, ok := r.rooms[roomID]
	r.mu.RUnlock()
	if !ok {
		return 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.members)
}

// Members returns a snapshot of the room's current members. The returned
// slice is a copy; callers never see the registry's internal map.
func (r *Registry) Members(roomID string) []Member {
	r.mu.RLock()
	e, ok := r.rooms[roomID]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	members := make([]Member, 0, len(e.members))
	for _, m := range e.members {
		members = append(members, m)
	}
	return members
}

// lockEntry returns the entry for roomID with its mutex held, creating the
// entry if absent. The entry lock is taken before the registry lock is
// dropped so an admit can never land on an entry that deleteIfEmpty has
// already removed from the map.
func (r *Registry) lockEntry(roomID string) *entry {
	r.mu.Lock()
	e, ok := r.rooms[roomID]
	if !ok {
		e = &entry{members: make(map[string]Member)}
		r.rooms[roomID] = e
	}
	e.mu.Lock()
	r.mu.Unlock()
	return e
}

// deleteIfEmpty removes the room entry if it is still empty. The emptiness
// check is repeated under the registry write lock because another member
// may have been admitted between the caller's check and this call.
func (r *Registry) deleteIfEmpty(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.rooms[roomID]
	if !ok {
		return
	}
	e.mu.Lock()
	empty := len(e.members) == 0
	e.mu.Unlock()
	if empty {
		delete(r.rooms, roomID)
	}
}
