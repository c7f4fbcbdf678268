package cache

import (
	"container/list"
	"sync"
)

// Namespaces partition cache keys per artifact kind so callers cannot
// collide on file paths reused across stages.
const (
	NamespaceAudio      = "audio"
	NamespaceTranscript = "transcript"
	NamespaceSubtitles  = "subtitles"
	NamespaceDuration   = "duration"
)

// Stats reports cache occupancy and hit counters.
type Stats struct {
	Items     int
	Bytes     int64
	Hits      int64
	Misses    int64
	Evictions int64
}

type entry struct {
	key   string
	value any
	size  int64
}

// Cache is a bounded in-process LRU keyed by namespace and key. Two limits
// apply simultaneously: a maximum entry count and a maximum total byte size
// as reported by callers. Inserting past either limit evicts the least
// recently used entries until both hold again.
type Cache struct {
	mu       sync.Mutex
	maxItems int
	maxBytes int64
	order    *list.List
	entries  map[string]*list.Element
	bytes    int64
	stats    Stats
}

// New constructs a cache bounded by maxItems entries and maxBytes total
// reported size. Non-positive limits disable the corresponding bound.
func New(maxItems int, maxBytes int64) *Cache {
	return &Cache{
		maxItems: maxItems,
		maxBytes: maxBytes,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// Get returns the cached value for a namespace and key, marking it as most
// recently used.
func (c *Cache) Get(namespace, key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.entries[compositeKey(namespace, key)]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.order.MoveToFront(element)
	c.stats.Hits++
	return element.Value.(*entry).value, true
}

// Put stores a value under a namespace and key. The size argument is the
// caller's estimate of the value's memory footprint in bytes; it only needs
// to be consistent, not exact. Values larger than the byte bound are not
// cached at all.
func (c *Cache) Put(namespace, key string, value any, size int64) {
	if c == nil {
		return
	}
	if size < 0 {
		size = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxBytes > 0 && size > c.maxBytes {
		return
	}

	composite := compositeKey(namespace, key)
	if element, ok := c.entries[composite]; ok {
		existing := element.Value.(*entry)
		c.bytes += size - existing.size
		existing.value = value
		existing.size = size
		c.order.MoveToFront(element)
		c.evictLocked()
		return
	}

	element := c.order.PushFront(&entry{key: composite, value: value, size: size})
	c.entries[composite] = element
	c.bytes += size
	c.evictLocked()
}

// Delete removes a single entry if present.
func (c *Cache) Delete(namespace, key string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	composite := compositeKey(namespace, key)
	if element, ok := c.entries[composite]; ok {
		c.removeLocked(element)
	}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.entries = make(map[string]*list.Element)
	c.bytes = 0
}

// Len returns the current entry count.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Bytes returns the current total reported size.
func (c *Cache) Bytes() int64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytes
}

// Snapshot returns a copy of the cache counters.
func (c *Cache) Snapshot() Stats {
	if c == nil {
		return Stats{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Items = c.order.Len()
	stats.Bytes = c.bytes
	return stats
}

func (c *Cache) evictLocked() {
	for {
		overItems := c.maxItems > 0 && c.order.Len() > c.maxItems
		overBytes := c.maxBytes > 0 && c.bytes > c.maxBytes
		if !overItems && !overBytes {
			return
		}
		oldest := c.order.Back()
		if oldest == nil {
			return
		}
		c.removeLocked(oldest)
		c.stats.Evictions++
	}
}

func (c *Cache) removeLocked(element *list.Element) {
	e := element.Value.(*entry)
	c.order.Remove(element)
	delete(c.entries, e.key)
	c.bytes -= e.size
}

func compositeKey(namespace, key string) string {
	return namespace + "\x00" + key
}
