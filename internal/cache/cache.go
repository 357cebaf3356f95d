// Package cache is an optional read-through cache for single-entity reads.
package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/fastapi1403/building-management/internal/models"
)

// Config holds configuration for the cache
type Config struct {
	// MaxCost is the maximum number of cached entities
	MaxCost int64
	// NumCounters is the number of counters for the cache
	NumCounters int64
	// BufferItems is the number of items to buffer
	BufferItems int64
	TTL         time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		MaxCost:     10_000,
		NumCounters: 100_000,
		BufferItems: 64,
		TTL:         30 * time.Second,
	}
}

// EntityCache keys entries by a generation number that every committed
// write bumps. An entry loaded before a commit lands under the old
// generation and is never served afterwards, so reads stay consistent with
// the writes that precede them.
type EntityCache struct {
	store      *ristretto.Cache
	group      singleflight.Group
	generation atomic.Uint64
	ttl        time.Duration
}

func New(cfg *Config) (*EntityCache, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		// cost counts entities, not bytes
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &EntityCache{store: store, ttl: cfg.TTL}, nil
}

func key(gen uint64, t models.EntityType, id uuid.UUID) string {
	return fmt.Sprintf("%d:%s:%s", gen, t, id)
}

// GetOrLoad returns a copy of the cached entity or calls load once per key,
// however many callers ask concurrently. load runs detached from the
// caller's cancellation; each caller still stops waiting when its own ctx ends.
func (c *EntityCache) GetOrLoad(ctx context.Context, t models.EntityType, id uuid.UUID, load func(context.Context) (models.Entity, error)) (models.Entity, error) {
	gen := c.generation.Load()
	k := key(gen, t, id)
	if v, ok := c.store.Get(k); ok {
		return v.(models.Entity).Clone(), nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(k, func() (any, error) {
		e, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.store.SetWithTTL(k, e.Clone(), 1, c.ttl)
		return e, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(models.Entity).Clone(), nil
	}
}

// Invalidate drops every entry cached so far.
func (c *EntityCache) Invalidate() {
	c.generation.Add(1)
}

// Wait blocks until buffered writes are visible to Get.
func (c *EntityCache) Wait() {
	c.store.Wait()
}

func (c *EntityCache) Close() {
	c.store.Close()
}
