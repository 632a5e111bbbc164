package storage

import (
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// MemoryStore is a map-backed Store. It is the degraded mode when the
// backing database cannot be opened, and the store of choice in tests,
// where the injected clock makes TTL expiry deterministic.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates a MemoryStore reading time from now
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

// Get returns the live value for key, if any
func (ms *MemoryStore) Get(key string) (string, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	entry, ok := ms.entries[key]
	if !ok {
		return "", false
	}
	if !entry.expiresAt.IsZero() && !ms.now().Before(entry.expiresAt) {
		delete(ms.entries, key)
		return "", false
	}
	return entry.value, true
}

// Set writes key with the given lifetime; ttl <= 0 means no expiry
func (ms *MemoryStore) Set(key, value string, ttl time.Duration) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = ms.now().Add(ttl)
	}
	ms.entries[key] = entry
}

// Delete removes key
func (ms *MemoryStore) Delete(key string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.entries, key)
}
