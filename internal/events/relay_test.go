package events

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/playperu/guessactor/internal/game"
)

// Needs a reachable redis; set REDIS_URL to run.
func TestRelayRoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rdb, err := OpenRedis(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	defer rdb.Close()

	hub := NewHub()
	relay := NewRelay(rdb, hub, slog.New(slog.DiscardHandler))
	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- relay.Run(runCtx) }()

	ch := hub.Subscribe("relay-test")
	defer hub.Unsubscribe("relay-test", ch)

	// PSubscribe is asynchronous; publish until the first event arrives.
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for received := false; !received; {
		select {
		case <-ch:
			received = true
		case <-tick.C:
			relay.Publish("relay-test", game.Event{Type: game.EventCoinsChanged, Coins: 1})
		case <-ctx.Done():
			t.Fatal("no relayed event")
		}
	}

	stop()
	if err := <-done; err != nil {
		t.Errorf("run: %v", err)
	}
	if err := (RedisChecker{Client: rdb}).Check(ctx); err != nil {
		t.Errorf("check: %v", err)
	}
}
