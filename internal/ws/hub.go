package ws

import (
	"sync"
)

// Hub tracks open stream sessions so they can be closed on shutdown
type Hub struct {
	sessions map[*Session]bool
	closed   bool
	mu       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[*Session]bool),
	}
}

func (h *Hub) register(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		_ = s.conn.Close()
		return
	}
	h.sessions[s] = true
}

func (h *Hub) unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.sessions, s)
}

// Count returns the number of open sessions
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.sessions)
}

// Close closes every open connection and refuses new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for s := range h.sessions {
		_ = s.conn.Close()
	}
}
