package cache

// Cache is a least-recently-used cache with a fixed capacity.
// A capacity of 0 means unlimited.
//
// Cache is not safe for concurrent use; each owner keeps its own.
type Cache[K comparable, V any] struct {
	entries  map[K]*entry[K, V]
	order    *lruList[K]
	capacity int
	onEvict  func(K, V)

	hits, misses, evictions uint64
}

type entry[K comparable, V any] struct {
	value V
	node  *lruNode[K]
}

// New creates a cache holding at most capacity entries. onEvict, when not
// nil, is called for every entry leaving the cache through eviction, Delete
// or Clear.
func New[K comparable, V any](capacity int, onEvict func(K, V)) *Cache[K, V] {
	return &Cache[K, V]{
		entries:  make(map[K]*entry[K, V]),
		order:    newLRUList[K](),
		capacity: max(capacity, 0),
		onEvict:  onEvict,
	}
}

// Get returns the cached value and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	e, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.order.MoveToFront(e.node)
	return e.value, true
}

// Set stores value under key, replacing any previous value, and evicts the
// least recently used entry when the cache is over capacity.
func (c *Cache[K, V]) Set(key K, value V) {
	if e, ok := c.entries[key]; ok {
		old := e.value
		e.value = value
		c.order.MoveToFront(e.node)
		if c.onEvict != nil {
			c.onEvict(key, old)
		}
		return
	}
	c.entries[key] = &entry[K, V]{value: value, node: c.order.PushFront(key)}
	for c.capacity > 0 && c.order.Len() > c.capacity {
		oldest, _ := c.order.RemoveOldest()
		c.drop(oldest)
		c.evictions++
	}
}

// GetOrCreate returns the cached value or stores the result of create.
// A create error is returned as is and nothing is cached.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := create()
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}

// Delete removes key. It reports whether the key was present.
func (c *Cache[K, V]) Delete(key K) bool {
	e, ok := c.entries[key]
	if !ok {
		return false
	}
	c.order.Remove(e.node)
	c.drop(key)
	return true
}

// Clear removes every entry.
func (c *Cache[K, V]) Clear() {
	for key := range c.entries {
		c.drop(key)
	}
	c.order.Clear()
}

func (c *Cache[K, V]) drop(key K) {
	e := c.entries[key]
	delete(c.entries, key)
	if c.onEvict != nil && e != nil {
		c.onEvict(key, e.value)
	}
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int { return len(c.entries) }

// Capacity returns the maximum number of entries, 0 for unlimited.
func (c *Cache[K, V]) Capacity() int { return c.capacity }

// Stats returns usage counters.
func (c *Cache[K, V]) Stats() Stats {
	s := Stats{
		Len:       len(c.entries),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// Stats contains cache statistics.
type Stats struct {
	Len       int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	// HitRate is Hits / (Hits + Misses), 0 before the first lookup.
	HitRate float64
}
