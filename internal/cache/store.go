package cache

import (
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Store is the process-wide query cache. Entries carry their own TTL and
// expire lazily on read; the background janitor (Start) reclaims memory for
// entries nobody reads again. Construct one per process and inject it, so
// tests can use isolated instances.
type Store struct {
	entries *ttlcache.Cache[string, any]
}

// NewStore creates an empty cache store.
func NewStore() *Store {
	entries := ttlcache.New(
		ttlcache.WithDisableTouchOnHit[string, any](),
	)
	return &Store{entries: entries}
}

// Start runs the expiry janitor until Stop is called.
func (s *Store) Start() {
	go s.entries.Start()
}

// Stop terminates the janitor goroutine.
func (s *Store) Stop() {
	s.entries.Stop()
}

// Get returns the cached value for key, or (nil, false) when the key is
// absent or its TTL elapsed. Expired entries are evicted on read.
func (s *Store) Get(key string) (any, bool) {
	item := s.entries.Get(key)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// Set stores value under key for ttl. A non-positive ttl means "do not
// cache": the call is a no-op and any previous entry under key is removed.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		s.entries.Delete(key)
		return
	}
	s.entries.Set(key, value, ttl)
}

// InvalidateRelated removes every entry whose key starts with prefix and
// returns the number of entries removed. Callers invoke this after a write
// so subsequent reads observe fresh data.
func (s *Store) InvalidateRelated(prefix string) int {
	removed := 0
	for _, key := range s.entries.Keys() {
		if strings.HasPrefix(key, prefix) {
			s.entries.Delete(key)
			removed++
		}
	}
	return removed
}

// Len returns the number of live entries (expired ones may still be counted
// until the janitor or a read evicts them).
func (s *Store) Len() int {
	return s.entries.Len()
}
