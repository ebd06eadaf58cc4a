package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// ConnRegistry maps a user to their single most recent connection. A new
// registration for the same user silently supersedes the old one
// (last-write-wins); the superseded connection keeps functioning but is no
// longer addressable for presence or notifications.
type ConnRegistry struct {
	mu    sync.RWMutex
	conns map[uuid.UUID]*Client
}

func NewConnRegistry() *ConnRegistry {
	return &ConnRegistry{
		conns: make(map[uuid.UUID]*Client),
	}
}

// Bind registers c as the user's current connection, returning the superseded
// connection if there was one.
func (r *ConnRegistry) Bind(userID uuid.UUID, c *Client) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.conns[userID]
	r.conns[userID] = c
	if prev == c {
		return nil
	}
	return prev
}

// Resolve returns the user's current connection, if any.
func (r *ConnRegistry) Resolve(userID uuid.UUID) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[userID]
	return c, ok
}

// Release removes the mapping for c's user only if c still holds it. It
// returns false when c was already superseded, in which case no presence
// transition must occur.
func (r *ConnRegistry) Release(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.conns[c.userID]
	if !ok || current != c {
		return false
	}
	delete(r.conns, c.userID)
	return true
}

// Len returns the number of registered users.
func (r *ConnRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
