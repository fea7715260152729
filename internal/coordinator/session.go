// Package coordinator tracks connected participants through the session
// registry, the source of truth for who is online.
package coordinator

import (
	"sync"
	"time"
)

// Session is the server-side identity of one connected participant. The
// display name is assigned once at identify time and never changes for the
// lifetime of the connection.
type Session struct {
	ConnID      string    `json:"connectionId"`
	DisplayName string    `json:"displayName"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// Registry maps connection identifiers to sessions. It owns session records
// exclusively; every other component refers to a session by its connection
// identifier only. Registration does not broadcast anything itself - fan-out
// of presence changes is the dispatcher's job, which keeps storage decoupled
// from delivery.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	order    []string // connection ids in join order
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Register creates a session for the given connection. It returns
// ErrDuplicateConnection if the identifier is already registered.
func (r *Registry) Register(connID, displayName string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[connID]; exists {
		return Session{}, ErrDuplicateConnection
	}

	session := &Session{
		ConnID:      connID,
		DisplayName: displayName,
		JoinedAt:    time.Now(),
	}
	r.sessions[connID] = session
	r.order = append(r.order, connID)
	return *session, nil
}

// Lookup returns the session for a connection identifier, if one exists.
func (r *Registry) Lookup(connID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[connID]
	if !ok {
		return Session{}, false
	}
	return *session, true
}

// Unregister removes the session for a connection. Unknown identifiers are
// a no-op.
func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[connID]; !exists {
		return
	}
	delete(r.sessions, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// ListActive returns all current sessions ordered by join time.
func (r *Registry) ListActive() []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	active := make([]Session, 0, len(r.order))
	for _, id := range r.order {
		if session, ok := r.sessions[id]; ok {
			active = append(active, *session)
		}
	}
	return active
}
