package ws

import (
	"sync"

	"github.com/cwrk-planet/session-service/internal/session"
)

type Conn interface {
	Send(ev session.Event) error
	Close() error
	ID() string
}

// Hub tracks live connections and their room groups. It implements
// session.Broadcaster; доставка best-effort, ошибки отправки не всплывают.
type Hub struct {
	mu       sync.RWMutex
	conns    map[string]Conn            // connID -> conn
	groups   map[string]map[string]Conn // roomID -> connID -> conn
	connRoom map[string]string          // connID -> roomID
}

func NewHub() *Hub {
	return &Hub{
		conns:    make(map[string]Conn),
		groups:   make(map[string]map[string]Conn),
		connRoom: make(map[string]string),
	}
}

func (h *Hub) Register(c Conn) {
	h.mu.Lock()
	h.conns[c.ID()] = c
	h.mu.Unlock()
}

func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.conns, connID)
	if roomID, ok := h.connRoom[connID]; ok {
		delete(h.connRoom, connID)
		if g, ok := h.groups[roomID]; ok {
			delete(g, connID)
			if len(g) == 0 {
				delete(h.groups, roomID)
			}
		}
	}
}

func (h *Hub) JoinGroup(connID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.conns[connID]
	if !ok {
		return
	}
	g, ok := h.groups[roomID]
	if !ok {
		g = make(map[string]Conn)
		h.groups[roomID] = g
	}
	g[connID] = c
	h.connRoom[connID] = roomID
}

func (h *Hub) Unicast(connID string, ev session.Event) {
	h.mu.RLock()
	c, ok := h.conns[connID]
	h.mu.RUnlock()

	if ok {
		_ = c.Send(ev) // best-effort
	}
}

func (h *Hub) Broadcast(roomID string, ev session.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.groups[roomID] {
		_ = c.Send(ev) // best-effort
	}
}

// TearDown снимает группу комнаты; соединения остаются открытыми.
func (h *Hub) TearDown(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for connID := range h.groups[roomID] {
		delete(h.connRoom, connID)
	}
	delete(h.groups, roomID)
}
