package noaa

import (
	"context"
	"sync"

	"github.com/couchcryptid/climate-normals-etl/internal/domain"
	"github.com/couchcryptid/climate-normals-etl/internal/observability"
)

// CachedFetcher wraps a StationFetcher with an in-memory LRU cache. Normals
// products are static, so entries never expire.
type CachedFetcher struct {
	inner   domain.StationFetcher
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedFetcher creates a cache decorator around a fetcher.
func NewCachedFetcher(inner domain.StationFetcher, maxEntries int, metrics *observability.Metrics) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedFetcher) FetchStation(ctx context.Context, stationID string) ([]byte, error) {
	if body, ok := c.cache.get(stationID); ok {
		c.metrics.FetchCache.WithLabelValues("hit").Inc()
		return body, nil
	}
	c.metrics.FetchCache.WithLabelValues("miss").Inc()

	body, err := c.inner.FetchStation(ctx, stationID)
	if err != nil {
		return nil, err
	}
	if len(body) > 0 {
		c.cache.put(stationID, body)
	}
	return body, nil
}

// lruCache is a simple thread-safe LRU cache of report bodies.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value []byte
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
