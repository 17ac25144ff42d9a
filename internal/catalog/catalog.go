// Package catalog is the shared stage catalog: admins write stages, players
// read them and watch for changes.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/playperu/guessactor/internal/game"
)

// Repository is the stage persistence the catalog is built on.
type Repository interface {
	List(ctx context.Context) ([]game.Stage, error)
	Get(ctx context.Context, id string) (game.Stage, error)
	Put(ctx context.Context, st game.Stage) error
	Delete(ctx context.Context, id string) error
	// Version increases with every stored change, including changes made
	// by other processes sharing the database.
	Version(ctx context.Context) (uint64, error)
}

// Snapshot is the full catalog at one version.
type Snapshot struct {
	Version uint64       `json:"version"`
	Stages  []game.Stage `json:"stages"`
}

type Catalog struct {
	repo   Repository
	logger *slog.Logger

	// mu serializes writes with snapshot delivery so subscribers never see
	// versions out of order.
	mu sync.Mutex
	// version is the stored version last delivered or observed.
	version uint64
	subs    map[chan Snapshot]struct{}
}

func New(repo Repository, logger *slog.Logger) *Catalog {
	return &Catalog{
		repo:   repo,
		logger: logger,
		subs:   make(map[chan Snapshot]struct{}),
	}
}

// ReadOnce returns a single stage.
func (c *Catalog) ReadOnce(ctx context.Context, id string) (game.Stage, error) {
	return c.repo.Get(ctx, id)
}

func (c *Catalog) Snapshot(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot(ctx)
}

// snapshot reads the version before the stages, so a concurrent change is
// at worst delivered twice. Must be called with mu held.
func (c *Catalog) snapshot(ctx context.Context) (Snapshot, error) {
	v, err := c.repo.Version(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading catalog version: %w", err)
	}
	stages, err := c.repo.List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("listing stages: %w", err)
	}
	c.version = v
	return Snapshot{Version: v, Stages: stages}, nil
}

// Subscribe delivers the current snapshot immediately and a fresh one after
// every write or delete until ctx ends. A slow subscriber only ever gets the
// latest snapshot.
func (c *Catalog) Subscribe(ctx context.Context) (<-chan Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	ch := make(chan Snapshot, 1)
	ch <- snap
	c.subs[ch] = struct{}{}

	go func() {
		<-ctx.Done()
		c.mu.Lock()
		delete(c.subs, ch)
		close(ch)
		c.mu.Unlock()
	}()
	return ch, nil
}

// Write validates, normalizes and stores the stage under id.
func (c *Catalog) Write(ctx context.Context, id string, st game.Stage) (game.Stage, error) {
	st.ID = id
	st, err := Normalize(st)
	if err != nil {
		return game.Stage{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.repo.Put(ctx, st); err != nil {
		return game.Stage{}, err
	}
	c.publish(ctx)
	c.logger.Info("stage written", "stage_id", st.ID, "actors", len(st.Actors))
	return st, nil
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.repo.Delete(ctx, id); err != nil {
		return err
	}
	c.publish(ctx)
	c.logger.Info("stage deleted", "stage_id", id)
	return nil
}

// Watch polls the stored version every interval and pushes a snapshot to
// subscribers whenever another process changed the catalog.
func (c *Catalog) Watch(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if err := c.poll(ctx); err != nil && ctx.Err() == nil {
				c.logger.Warn("polling catalog version failed", "error", err)
			}
		}
	}
}

func (c *Catalog) poll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, err := c.repo.Version(ctx)
	if err != nil {
		return err
	}
	if v == c.version {
		return nil
	}
	c.logger.Debug("catalog changed elsewhere", "version", v, "previous", c.version)
	c.publish(ctx)
	return nil
}

// publish must be called with mu held.
func (c *Catalog) publish(ctx context.Context) {
	if len(c.subs) == 0 {
		if v, err := c.repo.Version(ctx); err == nil {
			c.version = v
		}
		return
	}
	snap, err := c.snapshot(ctx)
	if err != nil {
		c.logger.Warn("building catalog snapshot failed", "error", err)
		return
	}
	for ch := range c.subs {
		offer(ch, snap)
	}
}

// offer replaces whatever snapshot is still pending in ch.
func offer(ch chan Snapshot, snap Snapshot) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
