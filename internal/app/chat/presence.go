package chat

import "time"

// PresenceEntry tracks one live, authenticated connection in the room.
type PresenceEntry struct {
	ConnID   string
	User     UserRef
	JoinedAt time.Time
}

// presenceRegistry maps connection ids to their presence entries while
// preserving join order, so every usersList snapshot lists users in the order
// they arrived.
//
// The registry is not safe for concurrent use. All mutation and reading happen
// on the room's run goroutine, which is the single writer of room state.
type presenceRegistry struct {
	entries map[string]*PresenceEntry
	order   []string
}

func newPresenceRegistry() *presenceRegistry {
	return &presenceRegistry{
		entries: make(map[string]*PresenceEntry),
	}
}

// Add registers a connection. Adding an already-present connection id replaces
// the entry without changing its position.
func (p *presenceRegistry) Add(connID string, ref UserRef) {
	if existing, ok := p.entries[connID]; ok {
		existing.User = ref
		return
	}

	p.entries[connID] = &PresenceEntry{
		ConnID:   connID,
		User:     ref,
		JoinedAt: time.Now(),
	}
	p.order = append(p.order, connID)
}

// Get returns the entry for a connection id.
func (p *presenceRegistry) Get(connID string) (*PresenceEntry, bool) {
	entry, ok := p.entries[connID]
	return entry, ok
}

// Remove deletes a connection's entry and returns it. Removing an unknown
// connection id is a no-op.
func (p *presenceRegistry) Remove(connID string) (*PresenceEntry, bool) {
	entry, ok := p.entries[connID]
	if !ok {
		return nil, false
	}

	delete(p.entries, connID)
	for i, id := range p.order {
		if id == connID {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}

	return entry, true
}

// Len reports the number of live entries.
func (p *presenceRegistry) Len() int {
	return len(p.entries)
}

// Snapshot returns the current users in join order. The slice is freshly
// allocated; repeated calls without intervening mutation yield equal snapshots.
func (p *presenceRegistry) Snapshot() []UserRef {
	list := make([]UserRef, 0, len(p.order))
	for _, id := range p.order {
		list = append(list, p.entries[id].User)
	}
	return list
}
