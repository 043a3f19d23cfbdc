// Package replay provides the replay cache the MessageFlow rule consults
// (§4.1 "Replay"). The library treats the cache as an externally supplied,
// thread-safe collaborator (§5); this package supplies the interface plus
// an in-memory implementation suitable for a single-process deployment or
// for tests.
package replay

import (
	"sync"
	"time"

	"github.com/insaplace/opensamlcore"
)

// Cache is the replay cache contract: CheckAndInsert inserts (context, id)
// if absent, returning true, or reports false if it was already present
// (§4.1 "Replay": cache-miss inserts and returns ok; cache-hit fails).
type Cache interface {
	// CheckAndInsert returns true if (context, id) was not already present,
	// inserting it with the given expiration. Returns false on a replay.
	CheckAndInsert(context, id string, expiration time.Time) bool
}

// InMemory is a process-wide, mutex-guarded replay cache keyed by
// (context, messageID), matching the "process-wide replay cache" of §4.1.
// Expired entries are swept lazily on insert, bounding memory without a
// background goroutine.
type InMemory struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

// NewInMemory constructs an empty cache.
func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[string]time.Time)}
}

func key(context, id string) string { return context + "\x00" + id }

// CheckAndInsert implements Cache.
func (c *InMemory) CheckAndInsert(context, id string, expiration time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := saml.TimeNow()
	k := key(context, id)
	if exp, ok := c.entries[k]; ok && now.Before(exp) {
		return false
	}

	// Sweep a bounded number of expired entries so long-running processes
	// don't grow the map unboundedly; a full scan on every insert would be
	// O(n) per message, so cap the work per call.
	swept := 0
	for ek, exp := range c.entries {
		if swept >= 64 {
			break
		}
		if !now.Before(exp) {
			delete(c.entries, ek)
			swept++
		}
	}

	c.entries[k] = expiration
	return true
}

// Len reports the number of live (possibly including not-yet-swept-expired)
// entries; exposed for tests.
func (c *InMemory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
