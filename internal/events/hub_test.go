package events

import (
	"encoding/json"
	"testing"

	"github.com/playperu/guessactor/internal/game"
)

func TestHubDeliversToPlayer(t *testing.T) {
	h := NewHub()
	a := h.Subscribe("alice")
	a2 := h.Subscribe("alice")
	b := h.Subscribe("bob")

	h.Publish("alice", game.Event{Type: game.EventCoinsChanged, Coins: 12})

	for _, ch := range []chan []byte{a, a2} {
		select {
		case data := <-ch:
			var ev game.Event
			if err := json.Unmarshal(data, &ev); err != nil {
				t.Fatal(err)
			}
			if ev.Type != game.EventCoinsChanged || ev.Coins != 12 {
				t.Errorf("event = %+v", ev)
			}
		default:
			t.Error("alice listener got nothing")
		}
	}
	select {
	case <-b:
		t.Error("bob received alice's event")
	default:
	}
}

func TestHubDropsForSlowListener(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe("p")

	for range 40 {
		h.Publish("p", game.Event{Type: game.EventCoinsChanged})
	}
	if len(ch) != cap(ch) {
		t.Errorf("buffered = %d, want %d", len(ch), cap(ch))
	}
}

func TestHubUnsubscribe(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe("p")
	if h.Listeners("p") != 1 {
		t.Fatalf("listeners = %d", h.Listeners("p"))
	}
	h.Unsubscribe("p", ch)
	if h.Listeners("p") != 0 {
		t.Errorf("listeners = %d after unsubscribe", h.Listeners("p"))
	}
	h.Publish("p", game.Event{Type: game.EventLevelUp})
	if len(ch) != 0 {
		t.Error("event delivered after unsubscribe")
	}
}
