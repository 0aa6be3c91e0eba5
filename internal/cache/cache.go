package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/gqltz/internal/datetime"
)

// Cache memoizes timezone lookups by name, including lookups of unknown names.
// Entries are reloaded once they are older than the configured TTL.
// NewCache should be used to create instances of Cache.
type Cache struct {
	// mu guards entries.
	mu sync.RWMutex

	// entries holds lookup results keyed by the trimmed timezone name.
	entries map[string]entry

	// ttl is the time-to-live for cached entries.
	ttl time.Duration

	// maxEntries bounds the number of cached names.
	maxEntries int

	// enabled determines if caching is enabled.
	enabled bool

	// load resolves a name that is not cached.
	load func(name string) (*time.Location, error)

	// now returns the current time.
	now func() time.Time

	// logger is used for logging cache operations.
	logger hclog.Logger
}

type entry struct {
	loc      *time.Location
	err      error
	storedAt time.Time
}

// NewCache creates a new timezone location cache.
func NewCache(logger hclog.Logger, opts ...Option) (*Cache, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	options, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}

	return &Cache{
		entries:    make(map[string]entry),
		ttl:        options.ttl,
		maxEntries: options.maxEntries,
		enabled:    options.enabled,
		load:       datetime.LoadLocation,
		now:        time.Now,
		logger:     logger.Named("cache"),
	}, nil
}

// Location returns the location for name, loading it on a miss.
// The error for an unknown name is cached like a location.
func (c *Cache) Location(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if !c.enabled {
		return c.load(name)
	}

	now := c.now()

	c.mu.RLock()
	e, ok := c.entries[name]
	c.mu.RUnlock()

	if ok && !c.isExpired(e, now) {
		return e.loc, e.err
	}

	loc, err := c.load(name)
	c.store(name, entry{loc: loc, err: err, storedAt: now})

	c.logger.Trace("Timezone loaded", "name", name, "known", err == nil, "refreshed", ok)

	return loc, err
}

// Len returns the number of cached names.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

func (c *Cache) store(name string, e entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[name]; !ok && len(c.entries) >= c.maxEntries {
		c.evictExpired(e.storedAt)
		if len(c.entries) >= c.maxEntries {
			c.logger.Debug("Timezone cache full, not caching", "name", name, "entries", len(c.entries))
			return
		}
	}

	c.entries[name] = e
}

// evictExpired removes expired entries, the caller must hold the write lock.
func (c *Cache) evictExpired(now time.Time) {
	for name, e := range c.entries {
		if c.isExpired(e, now) {
			delete(c.entries, name)
		}
	}
}

func (c *Cache) isExpired(e entry, now time.Time) bool {
	return now.Sub(e.storedAt) > c.ttl
}
