package runtime

import (
	"edusmarthub/contract"
	"edusmarthub/domain"
	"sync"
	"time"
)

type session struct {
	identity     domain.Identity
	lastActivity time.Time
}

// Registry tracks who is behind each live connection.
// Room membership is delegated to the RoomManager.
type Registry struct {
	mu       sync.RWMutex
	rooms    *RoomManager
	sessions map[domain.ConnectionID]*session
	now      func() time.Time
}

func NewRegistry(rooms *RoomManager) *Registry {
	return &Registry{
		rooms:    rooms,
		sessions: make(map[domain.ConnectionID]*session),
		now:      time.Now,
	}
}

// Register records the identity of a new connection and attaches its sink.
// Registering again overwrites the identity.
func (r *Registry) Register(id domain.ConnectionID, identity domain.Identity, sink contract.EventSink) {
	r.mu.Lock()
	r.sessions[id] = &session{identity: identity, lastActivity: r.now()}
	r.mu.Unlock()

	r.rooms.Attach(id, sink)
}

// Unregister removes the connection and every room membership it had.
// It returns the identity and the rooms left; ok is false when the connection was
// already gone, which makes repeated disconnects harmless.
func (r *Registry) Unregister(id domain.ConnectionID) (identity domain.Identity, left []domain.RoomKey, ok bool) {
	r.mu.Lock()
	s, exists := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	left = r.rooms.Detach(id)
	if !exists {
		return domain.Identity{}, left, false
	}
	return s.identity, left, true
}

func (r *Registry) Touch(id domain.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.lastActivity = r.now()
	}
}

func (r *Registry) Identity(id domain.ConnectionID) (domain.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return domain.Identity{}, false
	}
	return s.identity, true
}

func (r *Registry) LastActivity(id domain.ConnectionID) (time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return time.Time{}, false
	}
	return s.lastActivity, true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
