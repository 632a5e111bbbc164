package storage

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/buntdb"
)

// BuntStore is a Store backed by a buntdb database. Expiry is delegated
// to buntdb's native TTL support, which is what makes sliding-window
// session semantics a pure storage concern.
type BuntStore struct {
	db     *buntdb.DB
	logger zerolog.Logger
}

// OpenBuntStore opens (or creates) a buntdb database at path
func OpenBuntStore(path string, logger zerolog.Logger) (*BuntStore, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, err
	}
	return &BuntStore{
		db:     db,
		logger: logger.With().Str("component", "BuntStore").Logger(),
	}, nil
}

// Get returns the live value for key, if any
func (bs *BuntStore) Get(key string) (string, bool) {
	var value string
	err := bs.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(key)
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	if err != nil {
		if !errors.Is(err, buntdb.ErrNotFound) {
			bs.logger.Warn().Err(err).Str("key", key).Msg("Storage read failed")
		}
		return "", false
	}
	return value, true
}

// Set writes key with the given lifetime; ttl <= 0 means no expiry
func (bs *BuntStore) Set(key, value string, ttl time.Duration) {
	err := bs.db.Update(func(tx *buntdb.Tx) error {
		var opts *buntdb.SetOptions
		if ttl > 0 {
			opts = &buntdb.SetOptions{Expires: true, TTL: ttl}
		}
		_, _, err := tx.Set(key, value, opts)
		return err
	})
	if err != nil {
		bs.logger.Warn().Err(err).Str("key", key).Msg("Storage write failed")
	}
}

// Delete removes key
func (bs *BuntStore) Delete(key string) {
	err := bs.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(key)
		if errors.Is(err, buntdb.ErrNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		bs.logger.Warn().Err(err).Str("key", key).Msg("Storage delete failed")
	}
}

// Close closes the underlying database
func (bs *BuntStore) Close() error {
	return bs.db.Close()
}
