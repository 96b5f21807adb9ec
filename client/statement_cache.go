package client

import (
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash"

	"github.com/Faldon/DB4D/protocol"
)

// StatementCache caches the probe-phase EXECUTE-STATEMENT request template
// for recently used SQL text, keyed by an xxhash digest of the statement
// (§4.6). A cache hit returns a clone of the cached template so that the
// caller's command-id bump and FIRST-PAGE-SIZE rewrite never mutate the
// cached entry (invariant 8).
type StatementCache struct {
	entries     sync.Map // map[uint64]*protocol.Request
	accessOrder []uint64
	maxSize     int
	stats       CacheStats
	mu          sync.Mutex
}

// CacheStats tracks statement cache performance metrics.
type CacheStats struct {
	Hits        atomic.Int64
	Misses      atomic.Int64
	Evictions   atomic.Int64
	CurrentSize atomic.Int64
}

// CacheStatsSnapshot is a point-in-time copy of CacheStats' counters as
// plain int64s, safe to return by value (copying a CacheStats directly
// would copy its atomic.Int64 fields, a go vet copylocks violation).
type CacheStatsSnapshot struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	CurrentSize int64
}

// NewStatementCache creates a new statement cache with the given maximum size.
func NewStatementCache(maxSize int) *StatementCache {
	return &StatementCache{
		accessOrder: make([]uint64, 0, maxSize),
		maxSize:     maxSize,
	}
}

func statementKey(sql string) uint64 {
	return xxhash.Sum64String(sql)
}

// Get returns a clone of the cached request template for sql, if present.
func (c *StatementCache) Get(sql string) (*protocol.Request, bool) {
	key := statementKey(sql)
	value, ok := c.entries.Load(key)
	if !ok {
		c.stats.Misses.Add(1)
		return nil, false
	}

	c.stats.Hits.Add(1)
	c.updateAccessOrder(key)
	return value.(*protocol.Request).Clone(), true
}

// Add stores req as the cached template for sql, evicting the least
// recently used entry if the cache is already at capacity.
func (c *StatementCache) Add(sql string, req *protocol.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := statementKey(sql)
	if _, exists := c.entries.Load(key); !exists && len(c.accessOrder) >= c.maxSize {
		c.evictLRU()
	}

	c.entries.Store(key, req.Clone())
	c.accessOrder = append(c.accessOrder, key)
	c.stats.CurrentSize.Store(int64(len(c.accessOrder)))
}

// Clear removes every cached entry.
func (c *StatementCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries.Range(func(key, _ interface{}) bool {
		c.entries.Delete(key)
		return true
	})
	c.accessOrder = make([]uint64, 0, c.maxSize)
	c.stats.CurrentSize.Store(0)
}

// Stats returns a snapshot of the current cache statistics.
func (c *StatementCache) Stats() CacheStatsSnapshot {
	return CacheStatsSnapshot{
		Hits:        c.stats.Hits.Load(),
		Misses:      c.stats.Misses.Load(),
		Evictions:   c.stats.Evictions.Load(),
		CurrentSize: c.stats.CurrentSize.Load(),
	}
}

// evictLRU evicts the least recently used entry. Must be called with c.mu held.
func (c *StatementCache) evictLRU() {
	if len(c.accessOrder) == 0 {
		return
	}
	lru := c.accessOrder[0]
	c.entries.Delete(lru)
	c.accessOrder = c.accessOrder[1:]
	c.stats.Evictions.Add(1)
}

// updateAccessOrder moves key to the end (most recently used).
func (c *StatementCache) updateAccessOrder(key uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeFromAccessOrder(key)
	c.accessOrder = append(c.accessOrder, key)
}

// removeFromAccessOrder removes key from the access order list. Must be
// called with c.mu held.
func (c *StatementCache) removeFromAccessOrder(key uint64) {
	for i, k := range c.accessOrder {
		if k == key {
			c.accessOrder = append(c.accessOrder[:i], c.accessOrder[i+1:]...)
			break
		}
	}
}
