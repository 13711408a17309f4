// Package presence tracks which live connection belongs to which user.
//
// Entries are process-local and rebuilt from zero on restart. A user has at
// most one connection at a time; the most recent registration wins.
package presence

import (
	"sync"

	"github.com/google/uuid"
)

// Conn is a live connection that can receive events. Implementations must
// be comparable (typically a pointer) since Unregister matches by value.
type Conn interface {
	Send(event string, payload any) error
}

type Registry struct {
	mu    sync.RWMutex
	conns map[uuid.UUID]Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[uuid.UUID]Conn)}
}

// Register binds userID to conn, replacing any earlier connection.
func (r *Registry) Register(userID uuid.UUID, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[userID] = conn
}

func (r *Registry) Lookup(userID uuid.UUID) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[userID]
	return conn, ok
}

// Unregister removes the entries still pointing at conn and reports how many
// were removed. A user who has since registered a newer connection keeps it.
func (r *Registry) Unregister(conn Conn) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for userID, c := range r.conns {
		if c == conn {
			delete(r.conns, userID)
			removed++
		}
	}
	return removed
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Close drops every entry. Called once at shutdown after the websocket
// server has stopped accepting connections.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns = make(map[uuid.UUID]Conn)
}
