package ws

import (
	"log/slog"
)

// Hub tracks every live Client for lifecycle bookkeeping (connection
// counts, graceful shutdown). Room membership and message fan-out are
// owned entirely by the domain layer (entity.Room.Occupants,
// entity.Emitter) — a Client only ever needs to know it is a Sink, not
// which room it belongs to, so the teacher's room-keyed broadcast maps
// are dropped in favor of this flat registry.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run is the hub's single-goroutine loop owning the clients map.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}
