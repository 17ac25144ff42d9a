// Package events fans player events out to that player's live connections.
package events

import (
	"encoding/json"
	"sync"

	"github.com/playperu/guessactor/internal/game"
)

// Hub is an in-process pub/sub of JSON-encoded events, keyed by player ID.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives the player's events.
func (h *Hub) Subscribe(playerID string) chan []byte {
	ch := make(chan []byte, 16)
	h.mu.Lock()
	if h.subs[playerID] == nil {
		h.subs[playerID] = make(map[chan []byte]struct{})
	}
	h.subs[playerID][ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(playerID string, ch chan []byte) {
	h.mu.Lock()
	delete(h.subs[playerID], ch)
	if len(h.subs[playerID]) == 0 {
		delete(h.subs, playerID)
	}
	h.mu.Unlock()
}

// Publish implements game.Publisher.
func (h *Hub) Publish(playerID string, ev game.Event) {
	data, _ := json.Marshal(ev)
	h.deliver(playerID, data)
}

func (h *Hub) deliver(playerID string, data []byte) {
	h.mu.RLock()
	for ch := range h.subs[playerID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	h.mu.RUnlock()
}

// Listeners reports how many connections follow the player.
func (h *Hub) Listeners(playerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[playerID])
}
