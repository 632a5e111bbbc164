// Package attribution captures campaign-tag parameters from the current
// navigation, repairs their encodings, keeps them sticky for the
// session, and recovers truncated content labels from a bounded cache.
package attribution

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/moadamda/tracker/internal/config"
	"github.com/moadamda/tracker/internal/storage"
)

const paramsStorageKey = "_ma_utm_params"

// Capture extracts and maintains attribution parameters
type Capture struct {
	cfg          config.AttributionConfig
	contextStore storage.Store
	cache        *ContentCache
	logger       zerolog.Logger
}

// NewCapture creates a Capture. contextStore holds the per-session
// parameter set; cacheStore backs the longer-lived content cache.
func NewCapture(
	cfg config.AttributionConfig,
	contextStore storage.Store,
	cacheStore storage.Store,
	logger zerolog.Logger,
) *Capture {
	captureLogger := logger.With().Str("component", "AttributionCapture").Logger()
	return &Capture{
		cfg:          cfg,
		contextStore: contextStore,
		cache:        NewContentCache(cacheStore, cfg.ContentCacheCapacity, captureLogger),
		logger:       captureLogger,
	}
}

// ExtractFromRawQuery selects every query parameter carrying the
// attribution prefix and fully decodes its value. The scan works on the
// raw query string rather than a parsed url.Values: parsing would drop
// any pair whose value holds a malformed percent escape, and those are
// exactly the values the repair pipeline exists for. The scan is
// open-ended: any new key a campaign system emits is captured without
// code changes.
func (c *Capture) ExtractFromRawQuery(rawQuery string) map[string]string {
	params := make(map[string]string)
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}
		if !strings.HasPrefix(key, c.cfg.ParamPrefix) {
			continue
		}
		if _, seen := params[key]; seen {
			continue
		}
		params[key] = FullyDecode(value, c.logger)
	}
	return params
}

// PersistOrRestore makes attribution sticky across same-session
// navigations: a non-empty set overwrites the stored one, an empty set
// restores whatever an earlier navigation stored. This is how a
// redirect through a login gate does not erase the original campaign.
func (c *Capture) PersistOrRestore(params map[string]string) map[string]string {
	if len(params) > 0 {
		raw, err := json.Marshal(params)
		if err == nil {
			c.contextStore.Set(paramsStorageKey, string(raw), 0)
			c.logger.Debug().Int("count", len(params)).Msg("Attribution parameters persisted")
		}
		return params
	}

	raw, ok := c.contextStore.Get(paramsStorageKey)
	if !ok {
		return params
	}
	stored := make(map[string]string)
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		c.logger.Warn().Err(err).Msg("Stored attribution parameters corrupted")
		return params
	}
	c.logger.Debug().Msg("Attribution parameters restored from session storage")
	return stored
}

// RecoverContent repairs a missing content label from the cache, or
// feeds the cache when the label is present. Population and recovery
// are mutually exclusive per call.
func (c *Capture) RecoverContent(params map[string]string) {
	id := params[c.cfg.IDKey]
	if id == "" {
		return
	}

	content := params[c.cfg.ContentKey]
	if content == "" {
		if cached, ok := c.cache.Get(id); ok {
			params[c.cfg.ContentKey] = cached
			c.logger.Info().Str("utm_id", id).Str("recovered", cached).
				Msg("Empty content label recovered from cache")
		}
		return
	}

	c.cache.Put(id, content)
}
