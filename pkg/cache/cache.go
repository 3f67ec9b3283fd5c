// Package cache provides a time-boxed, size-bounded in-memory store for
// transcript results. Entries expire after a TTL and the oldest-inserted
// entries are evicted under capacity pressure. All state is process-local
// and resets on restart.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/ytfetch/transcript-service/pkg/transcript"
)

// Key identifies a cached result by video and target language.
type Key struct {
	VideoID  string
	Language string
}

// String generates a deterministic cache key string.
// Format: transcript:<video_id>:<language>
func (k Key) String() string {
	return fmt.Sprintf("transcript:%s:%s", k.VideoID, k.Language)
}

// entry pairs a stored result with its insertion time.
type entry struct {
	result   *transcript.Result
	storedAt time.Time
}

// Config holds the cache configuration.
type Config struct {
	// TTL is how long a stored result stays valid.
	TTL time.Duration

	// MaxSize caps the number of entries. The oldest-inserted entries are
	// evicted first when the cap is exceeded.
	MaxSize int
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		TTL:     300 * time.Second,
		MaxSize: 1000,
	}
}

// Cache is a TTL and capacity bounded result store, safe for concurrent
// use.
type Cache struct {
	mu      sync.Mutex
	cfg     Config
	entries map[Key]*entry
	order   []Key // insertion order, oldest first

	now func() time.Time
}

// New creates a cache with the given configuration.
func New(cfg Config) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultConfig().MaxSize
	}
	return &Cache{
		cfg:     cfg,
		entries: make(map[Key]*entry),
		now:     time.Now,
	}
}

// Get returns the stored result for key if it exists and is within TTL.
// Expired entries are dropped lazily.
func (c *Cache) Get(key Key) (*transcript.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		cacheMisses.Inc()
		return nil, false
	}

	if c.now().Sub(e.storedAt) > c.cfg.TTL {
		c.remove(key)
		cacheMisses.Inc()
		cacheEvictionsTotal.WithLabelValues("expired").Inc()
		return nil, false
	}

	cacheHits.Inc()
	return e.result, true
}

// Put stores a result under key. Only success results are cached; anything
// else is ignored. Prune runs after every store.
func (c *Cache) Put(key Key, result *transcript.Result) {
	if result == nil || !result.IsSuccess() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.remove(key)
	}
	c.entries[key] = &entry{result: result, storedAt: c.now()}
	c.order = append(c.order, key)
	c.prune()
	cacheSizeGauge.Set(float64(len(c.entries)))
}

// Prune removes all TTL-expired entries and then evicts the
// oldest-inserted entries until the cache is at or below capacity.
func (c *Cache) Prune() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prune()
	cacheSizeGauge.Set(float64(len(c.entries)))
}

// prune does the actual work. Caller must hold the mutex.
func (c *Cache) prune() {
	now := c.now()
	for _, key := range append([]Key(nil), c.order...) {
		if e, ok := c.entries[key]; ok && now.Sub(e.storedAt) > c.cfg.TTL {
			c.remove(key)
			cacheEvictionsTotal.WithLabelValues("expired").Inc()
		}
	}

	for len(c.entries) > c.cfg.MaxSize {
		c.remove(c.order[0])
		cacheEvictionsTotal.WithLabelValues("capacity").Inc()
	}
}

// remove deletes a key from the map and the insertion-order list. Caller
// must hold the mutex.
func (c *Cache) remove(key Key) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Len returns the current number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
