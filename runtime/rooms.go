package runtime

import (
	"context"
	"edusmarthub/contract"
	"edusmarthub/domain"
	"edusmarthub/domain/event"
	"edusmarthub/errors"
	"log/slog"
	"slices"
	"sync"
)

type Set map[domain.ConnectionID]struct{}

// RoomManager owns room membership in both directions.
// A connection is in rooms[key] iff key is in memberships[connection]; both maps are
// only ever touched under mu so no reader can observe one side without the other.
type RoomManager struct {
	mu          sync.RWMutex
	log         *slog.Logger
	rooms       map[domain.RoomKey]Set
	memberships map[domain.ConnectionID]map[domain.RoomKey]struct{}
	sinks       map[domain.ConnectionID]contract.EventSink
}

func NewRoomManager(log *slog.Logger) *RoomManager {
	return &RoomManager{
		log:         log,
		rooms:       make(map[domain.RoomKey]Set),
		memberships: make(map[domain.ConnectionID]map[domain.RoomKey]struct{}),
		sinks:       make(map[domain.ConnectionID]contract.EventSink),
	}
}

// Attach binds the outbound sink of a connection. Attaching again replaces the sink.
func (m *RoomManager) Attach(id domain.ConnectionID, sink contract.EventSink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinks[id] = sink
}

// Detach removes the connection from every room it joined and forgets its sink.
// It returns the rooms left, sorted. Detaching an unknown connection is a no-op.
func (m *RoomManager) Detach(id domain.ConnectionID) []domain.RoomKey {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sinks, id)
	joined, ok := m.memberships[id]
	if !ok {
		return nil
	}
	left := make([]domain.RoomKey, 0, len(joined))
	for key := range joined {
		m.removeMember(key, id)
		left = append(left, key)
	}
	delete(m.memberships, id)
	slices.Sort(left)
	return left
}

// Join is idempotent. The room is created on first join.
// Only attached connections can join: a request still queued when its connection
// went away must not resurrect memberships. Join reports whether the connection is a member.
func (m *RoomManager) Join(key domain.RoomKey, id domain.ConnectionID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, attached := m.sinks[id]; !attached {
		return false
	}
	if _, ok := m.rooms[key]; !ok {
		m.rooms[key] = make(Set)
	}
	m.rooms[key][id] = struct{}{}

	if _, ok := m.memberships[id]; !ok {
		m.memberships[id] = make(map[domain.RoomKey]struct{})
	}
	m.memberships[id][key] = struct{}{}
	return true
}

// Leave is idempotent; leaving a room never joined does nothing.
// Empty rooms are reaped immediately.
func (m *RoomManager) Leave(key domain.RoomKey, id domain.ConnectionID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.removeMember(key, id)
	if joined, ok := m.memberships[id]; ok {
		delete(joined, key)
		if len(joined) == 0 {
			delete(m.memberships, id)
		}
	}
}

// removeMember must be called with mu held.
func (m *RoomManager) removeMember(key domain.RoomKey, id domain.ConnectionID) {
	members, ok := m.rooms[key]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(m.rooms, key)
	}
}

// MembersOf returns the sorted members of a room, empty when the room does not exist.
func (m *RoomManager) MembersOf(key domain.RoomKey) []domain.ConnectionID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	members := make([]domain.ConnectionID, 0, len(m.rooms[key]))
	for id := range m.rooms[key] {
		members = append(members, id)
	}
	slices.Sort(members)
	return members
}

// RoomsOf returns the sorted rooms a connection is a member of.
func (m *RoomManager) RoomsOf(id domain.ConnectionID) []domain.RoomKey {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]domain.RoomKey, 0, len(m.memberships[id]))
	for key := range m.memberships[id] {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

func (m *RoomManager) IsMember(key domain.RoomKey, id domain.ConnectionID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.rooms[key][id]
	return ok
}

func (m *RoomManager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// Broadcast hands the event to every current member of the room and returns how many accepted it.
// Sinks never block, so delivery happens under the read lock: a member cannot leave halfway
// through a broadcast and callers serialising broadcasts per room get the same order on every member.
func (m *RoomManager) Broadcast(ctx context.Context, key domain.RoomKey, e event.Outbound) int {
	return m.BroadcastExcept(ctx, key, "", e)
}

// BroadcastExcept is Broadcast without the excluded connection, for announcements about that connection.
func (m *RoomManager) BroadcastExcept(ctx context.Context, key domain.RoomKey, exclude domain.ConnectionID,
	e event.Outbound) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	delivered := 0
	for id := range m.rooms[key] {
		if id == exclude {
			continue
		}
		sink, ok := m.sinks[id]
		if !ok {
			continue
		}
		if err := sink.Consume(ctx, e); err != nil {
			m.log.Warn("Event not delivered", "room", key, "connection_id", id, "event", e.Type, "error", err)
			continue
		}
		delivered++
	}
	return delivered
}

// Send delivers an event to a single connection.
func (m *RoomManager) Send(ctx context.Context, id domain.ConnectionID, e event.Outbound) error {
	m.mu.RLock()
	sink, ok := m.sinks[id]
	m.mu.RUnlock()
	if !ok {
		return errors.ErrNotConnected
	}
	return sink.Consume(ctx, e)
}
