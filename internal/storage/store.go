// Package storage provides the tracker's key spaces: small TTL-aware
// key-value stores standing in for the browsing context's cookie,
// session and local storage areas.
package storage

import (
	"time"

	"github.com/rs/zerolog"
)

// Store is a TTL-aware key-value store. Implementations never return
// errors: storage unavailability degrades to misses and dropped writes,
// matching the tracker's never-crash contract.
type Store interface {
	// Get returns the live value for key, if any
	Get(key string) (string, bool)
	// Set writes key with the given lifetime; ttl <= 0 means no expiry
	Set(key, value string, ttl time.Duration)
	// Delete removes key
	Delete(key string)
}

// NewStore opens a buntdb-backed store at path (":memory:" for a
// per-context store). If the database cannot be opened the returned
// store is an in-memory fallback, so identity survives at least for the
// lifetime of this execution context.
func NewStore(path string, logger zerolog.Logger) Store {
	store, err := OpenBuntStore(path, logger)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).
			Msg("Storage unavailable, degrading to in-memory store")
		return NewMemoryStore(time.Now)
	}
	return store
}
