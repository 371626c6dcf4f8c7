package cache

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/healthmate/internal/domain/spot"
)

const (
	spotsListKey = "spots:list:v1"
	spotsGenKey  = "spots:list:gen"
)

// Cache is a process-local TTL cache.
type Cache struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]entry

	spotsGen int64 // bumped by InvalidateSpots
}

type entry struct {
	val any
	exp time.Time
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache{
		ttl: ttl,
		m:   make(map[string]entry),
	}
}

func (c *Cache) Get(key string) (any, bool) {
	now := time.Now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if now.After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false
	}

	return e.val, true
}

func (c *Cache) Set(key string, val any) {
	c.mu.Lock()
	c.m[key] = entry{val: val, exp: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

// GetSpots returns a copy so callers cannot mutate the cached listing.
func (c *Cache) GetSpots(_ context.Context) ([]spot.WorkoutSpot, bool) {
	v, ok := c.Get(spotsListKey)
	if !ok {
		return nil, false
	}

	spots, ok := v.([]spot.WorkoutSpot)
	if !ok {
		return nil, false
	}

	return append([]spot.WorkoutSpot(nil), spots...), true
}

func (c *Cache) SpotsGeneration(_ context.Context) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.spotsGen, true
}

// SetSpots drops the listing when an invalidation happened after gen was read.
func (c *Cache) SetSpots(_ context.Context, gen int64, spots []spot.WorkoutSpot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.spotsGen {
		return
	}
	c.m[spotsListKey] = entry{
		val: append([]spot.WorkoutSpot(nil), spots...),
		exp: time.Now().Add(c.ttl),
	}
}

func (c *Cache) InvalidateSpots(_ context.Context) {
	c.mu.Lock()
	delete(c.m, spotsListKey)
	c.spotsGen++
	c.mu.Unlock()
}
