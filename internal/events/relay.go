package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/playperu/guessactor/internal/game"
)

const channelPrefix = "guessactor:player:"

// Relay publishes player events through redis so that every instance can
// deliver them to its local Hub.
type Relay struct {
	rdb    *redis.Client
	hub    *Hub
	logger *slog.Logger
}

func NewRelay(rdb *redis.Client, hub *Hub, logger *slog.Logger) *Relay {
	return &Relay{rdb: rdb, hub: hub, logger: logger}
}

// Publish implements game.Publisher. When redis is unreachable the event is
// still delivered locally.
func (r *Relay) Publish(playerID string, ev game.Event) {
	data, _ := json.Marshal(ev)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.rdb.Publish(ctx, channelPrefix+playerID, data).Err(); err != nil {
		r.logger.Warn("relaying event failed", "player_id", playerID, "type", ev.Type, "error", err)
		r.hub.deliver(playerID, data)
	}
}

// Run forwards relayed events into the local Hub until ctx ends.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribing to relay: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			playerID := strings.TrimPrefix(msg.Channel, channelPrefix)
			r.hub.deliver(playerID, []byte(msg.Payload))
		}
	}
}

// OpenRedis connects and pings.
func OpenRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

// RedisChecker adapts *redis.Client to the health check interface.
type RedisChecker struct{ Client *redis.Client }

func (c RedisChecker) Check(ctx context.Context) error { return c.Client.Ping(ctx).Err() }
