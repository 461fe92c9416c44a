package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultTTL is the lifetime of a memory-store entry before it is treated
// as expired and re-computed.
const DefaultTTL = 3600 * time.Second

// DefaultCapacity bounds the number of month records the memory store
// holds at once; the oldest entry is evicted once this is exceeded, ahead
// of TTL expiry.
const DefaultCapacity = 4096

// MemoryStore is the process-local, short-lived tier of the cache: a
// TTL-bounded LRU of serialized MonthRecord/HorizonRecord blobs, lazily
// pruned of expired entries on Get. It is safe for concurrent use; the
// underlying expirable.LRU guards its own critical sections so no
// additional locking is needed here.
type MemoryStore struct {
	lru *lru.LRU[string, []byte]
}

// NewMemoryStore builds a MemoryStore with the given capacity and
// time-to-live. A capacity or ttl of zero falls back to the defaults.
func NewMemoryStore(capacity int, ttl time.Duration) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{lru: lru.NewLRU[string, []byte](capacity, nil, ttl)}
}

// Get returns the cached blob for k, or ok=false on a miss (including an
// expired entry, which is evicted as a side effect of this call).
func (m *MemoryStore) Get(k Key) (data []byte, ok bool) {
	return m.lru.Get(k.String())
}

// Set stores data under k, resetting its TTL.
func (m *MemoryStore) Set(k Key, data []byte) {
	m.lru.Add(k.String(), data)
}

// Len returns the number of live (non-expired) entries currently held.
func (m *MemoryStore) Len() int {
	return m.lru.Len()
}
