package websocket

import (
	"encoding/json"
	"sync"
)

// BalanceUpdate is pushed to a customer's sockets after each posting.
type BalanceUpdate struct {
	CardID     int64  `json:"card_id"`
	CardNumber string `json:"card_number"`
	Type       string `json:"type"`
	Amount     string `json:"amount"`
	Balance    string `json:"balance"`
	Version    int64  `json:"version"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[int64]map[*Client]struct{}),
	}
}

func (h *Hub) Register(customerID int64, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[customerID] == nil {
		h.clients[customerID] = make(map[*Client]struct{})
	}
	h.clients[customerID][client] = struct{}{}
}

func (h *Hub) Unregister(customerID int64, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[customerID] == nil {
		return
	}
	delete(h.clients[customerID], client)
	if len(h.clients[customerID]) == 0 {
		delete(h.clients, customerID)
	}
}

// BroadcastBalance never blocks; slow clients miss updates.
func (h *Hub) BroadcastBalance(customerID int64, update BalanceUpdate) {
	payload, _ := json.Marshal(update)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[customerID] {
		select {
		case client.send <- payload:
		default:
		}
	}
}

func (h *Hub) Subscribers(customerID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[customerID])
}
