package inference

import (
	"log/slog"
	"sync"
	"time"

	"github.com/bertygi/HibiLog-EmotionScore/internal/domain"
	"github.com/jonboulle/clockwork"
)

// CacheObserver receives cache events, typically for metrics.
type CacheObserver interface {
	Hit()
	Miss()
	Evicted(reason string, n int)
	SetEntries(n int)
}

type noopObserver struct{}

func (noopObserver) Hit() {}
func (noopObserver) Miss() {}
func (noopObserver) Evicted(string, int) {}
func (noopObserver) SetEntries(int) {}

// Cache is an in-memory TTL cache of emotion vectors keyed by truncated text.
// A nil *Cache is a valid, always-missing cache.
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int
	clock      clockwork.Clock
	observer   CacheObserver
}

type cacheEntry struct {
	vec       domain.EmotionVector
	expiresAt time.Time
}

// NewCache returns nil (caching disabled) when ttl <= 0. maxEntries <= 0
// means unbounded.
func NewCache(ttl time.Duration, maxEntries int, clock clockwork.Clock, observer CacheObserver) *Cache {
	if ttl <= 0 {
		return nil
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if observer == nil {
		observer = noopObserver{}
	}
	return &Cache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		clock:      clock,
		observer:   observer,
	}
}

func (c *Cache) Get(key string) (domain.EmotionVector, bool) {
	if c == nil {
		return domain.EmotionVector{}, false
	}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !c.clock.Now().Before(entry.expiresAt) {
		c.observer.Miss()
		return domain.EmotionVector{}, false
	}

	c.observer.Hit()
	return entry.vec, true
}

func (c *Cache) Set(key string, vec domain.EmotionVector) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.observer.Evicted("expired", c.evictExpiredLocked(now))
		if len(c.entries) >= c.maxEntries {
			c.evictOldestLocked()
			c.observer.Evicted("capacity", 1)
		}
	}

	c.entries[key] = cacheEntry{vec: vec, expiresAt: now.Add(c.ttl)}
	c.observer.SetEntries(len(c.entries))
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// EvictExpired removes expired entries and returns how many were removed.
func (c *Cache) EvictExpired() int {
	if c == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.evictExpiredLocked(c.clock.Now())
	c.observer.Evicted("expired", n)
	c.observer.SetEntries(len(c.entries))
	return n
}

// StartEvictionTimer runs EvictExpired every interval until the returned
// stop function is called.
func (c *Cache) StartEvictionTimer(interval time.Duration) func() {
	if c == nil {
		return func() {}
	}

	ticker := c.clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				if evicted := c.EvictExpired(); evicted > 0 {
					slog.Debug("Evicted expired inference cache entries", "count", evicted, "remaining", c.Len())
				}
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

func (c *Cache) evictExpiredLocked(now time.Time) int {
	evicted := 0
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}

// evictOldestLocked drops the entry closest to expiry. All entries share one
// TTL, so that is also the least recently written.
func (c *Cache) evictOldestLocked() {
	var (
		oldestKey string
		oldestAt  time.Time
		found     bool
	)
	for key, entry := range c.entries {
		if !found || entry.expiresAt.Before(oldestAt) {
			oldestKey, oldestAt, found = key, entry.expiresAt, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}
