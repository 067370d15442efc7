// Package wordcache keeps classification results for words already seen,
// in memory during a run and reconciled with a cache file at load/flush.
package wordcache

import (
	"sync"

	"lipi/internal/script"
)

// Entry is a cached classification result.
type Entry struct {
	Code  script.Code `json:"code" msgpack:"code"`
	Score float64     `json:"score" msgpack:"score"`
}

type record struct {
	Entry
	// durable entries passed the acceptance threshold and survive Flush;
	// the rest live only for the session.
	durable bool
}

// Cache is the in-memory word → result view. Keys are exact strings:
// no normalization, no trimming, no case folding.
//
// Guarded by a mutex so folder-mode annotation can share one cache
// across per-file goroutines.
type Cache struct {
	mu      sync.RWMutex
	records map[string]record
	dirty   bool
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{records: make(map[string]record)}
}

// Get returns the session entry for key, if any.
func (c *Cache) Get(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.records[key]
	return r.Entry, ok
}

// Put stores e for key in the session view. The entry becomes durable
// (eligible for Flush) only when its score clears minScore, which keeps
// low-confidence guesses out of the cache file.
func (c *Cache) Put(key string, e Entry, minScore float64) {
	durable := e.Score >= minScore
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[key] = record{Entry: e, durable: durable}
	if durable {
		c.dirty = true
	}
}

// Len returns the number of session entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Dirty reports whether a durable entry was added since the last load
// or flush.
func (c *Cache) Dirty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dirty
}

// durableView copies out the entries that Flush persists.
func (c *Cache) durableView() map[string]Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]Entry, len(c.records))
	for k, r := range c.records {
		if r.durable {
			out[k] = r.Entry
		}
	}
	return out
}

// absorb merges loaded entries as durable without marking the cache dirty.
func (c *Cache) absorb(entries map[string]Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range entries {
		c.records[k] = record{Entry: e, durable: true}
	}
}
