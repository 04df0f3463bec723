package ws

import (
	"log"
	"sync"

	"github.com/flyasher/fiora/internal/observability"
	"github.com/flyasher/fiora/internal/transport"
)

// Hub is the group membership registry: it maps each group to the set of
// connections currently in its room and scopes broadcast to that set.
type Hub struct {
	rooms  map[string]map[*transport.Conn]struct{}
	joined map[*transport.Conn]map[string]struct{}
	mu     sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:  make(map[string]map[*transport.Conn]struct{}),
		joined: make(map[*transport.Conn]map[string]struct{}),
	}
}

// Join adds the connection to the room for groupID. Joining a room the
// connection is already in is a no-op.
func (h *Hub) Join(conn *transport.Conn, groupID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[groupID]; !ok {
		h.rooms[groupID] = make(map[*transport.Conn]struct{})
	}
	h.rooms[groupID][conn] = struct{}{}
	if _, ok := h.joined[conn]; !ok {
		h.joined[conn] = make(map[string]struct{})
	}
	h.joined[conn][groupID] = struct{}{}
}

// Leave removes the connection from the room for groupID.
func (h *Hub) Leave(conn *transport.Conn, groupID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(conn, groupID)
}

// LeaveAll removes the connection from every room it joined. Invoked on
// disconnect.
func (h *Hub) LeaveAll(conn *transport.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for groupID := range h.joined[conn] {
		h.leaveLocked(conn, groupID)
	}
}

func (h *Hub) leaveLocked(conn *transport.Conn, groupID string) {
	if conns, ok := h.rooms[groupID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, groupID)
		}
	}
	if groups, ok := h.joined[conn]; ok {
		delete(groups, groupID)
		if len(groups) == 0 {
			delete(h.joined, conn)
		}
	}
}

// Broadcast delivers event/payload to every connection currently in the room
// except exclude. The member set is snapshotted under the read lock, so a
// concurrent join or leave never yields a torn set.
func (h *Hub) Broadcast(groupID string, exclude *transport.Conn, event string, payload any) {
	h.mu.RLock()
	conns := make([]*transport.Conn, 0, len(h.rooms[groupID]))
	for conn := range h.rooms[groupID] {
		if conn != exclude {
			conns = append(conns, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.Push(event, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.LeaveAll(conn)
		}
	}
	observability.AddBroadcastRecipients(event, len(conns))
}
