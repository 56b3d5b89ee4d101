package websocket

import (
	"context"
	"encoding/json"
)

// Event is what the admin dashboard receives for every order mutation.
type Event struct {
	Type     string   `json:"type"`
	OrderID  string   `json:"orderId,omitempty"`
	Status   string   `json:"status,omitempty"`
	OrderIDs []string `json:"orderIds,omitempty"`
}

type Client struct {
	hub  *Hub
	conn *Conn
	send chan []byte
}

// Hub fans order events out to every connected admin client. There is a
// single room; all admins see all orders.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan Event
	clients    map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event),
		clients:    make(map[*Client]bool),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case evt := <-h.broadcast:
			msg, _ := json.Marshal(evt)
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow client; drop it rather than stall the hub.
					delete(h.clients, c)
					close(c.send)
				}
			}
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
			}
			return
		}
	}
}

// Broadcast never blocks the caller; delivery is handled by Run.
func (h *Hub) Broadcast(evt Event) {
	go func() { h.broadcast <- evt }()
}
