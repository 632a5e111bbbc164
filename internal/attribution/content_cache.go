package attribution

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/moadamda/tracker/internal/storage"
)

const contentCacheStorageKey = "_ma_utm_content_cache"

type contentEntry struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// ContentCache maps a campaign identifier to the last content label seen
// together with it. Some ad platforms truncate the content parameter on
// a fraction of impressions; a hit here repairs those records. The cache
// is bounded: when full, the oldest entry is evicted first.
type ContentCache struct {
	store    storage.Store
	capacity int
	logger   zerolog.Logger
}

// NewContentCache creates a content cache persisted in the given store
func NewContentCache(store storage.Store, capacity int, logger zerolog.Logger) *ContentCache {
	return &ContentCache{
		store:    store,
		capacity: capacity,
		logger:   logger.With().Str("component", "ContentCache").Logger(),
	}
}

// Get returns the cached content label for the campaign identifier
func (cc *ContentCache) Get(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	for _, entry := range cc.load() {
		if entry.ID == id {
			return entry.Content, true
		}
	}
	return "", false
}

// Put records the (identifier, content) pair, updating an existing
// identifier in place and evicting the oldest entry beyond capacity
func (cc *ContentCache) Put(id, content string) {
	if id == "" || content == "" {
		return
	}

	entries := cc.load()
	updated := false
	for i := range entries {
		if entries[i].ID == id {
			entries[i].Content = content
			updated = true
			break
		}
	}
	if !updated {
		entries = append(entries, contentEntry{ID: id, Content: content})
	}
	for len(entries) > cc.capacity {
		entries = entries[1:]
	}

	cc.save(entries)
	cc.logger.Debug().Str("utm_id", id).Msg("Content label cached")
}

func (cc *ContentCache) load() []contentEntry {
	raw, ok := cc.store.Get(contentCacheStorageKey)
	if !ok {
		return nil
	}
	var entries []contentEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		cc.logger.Warn().Err(err).Msg("Content cache corrupted, resetting")
		cc.store.Delete(contentCacheStorageKey)
		return nil
	}
	return entries
}

func (cc *ContentCache) save(entries []contentEntry) {
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	cc.store.Set(contentCacheStorageKey, string(raw), 0)
}
