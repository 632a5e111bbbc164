package commerce

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/moadamda/tracker/internal/config"
	"github.com/moadamda/tracker/internal/event"
	"github.com/moadamda/tracker/internal/lifecycle"
	"github.com/moadamda/tracker/internal/storage"
)

const lastCartStorageKey = "_ma_last_cart_event"

type lastCartEvent struct {
	ProductID string `json:"product_id"`
	Timestamp int64  `json:"timestamp"`
}

// BuildFunc creates an event skeleton of the given type with identity
// and timestamp already set
type BuildFunc func(eventType string) event.Event

// EmitFunc hands a finished event to the dispatcher
type EmitFunc func(ev event.Event)

// Extractor emits cart and purchase events from page signals
type Extractor struct {
	mu           sync.Mutex
	cfg          config.CommerceConfig
	sources      []ProductSource
	contextStore storage.Store
	sched        lifecycle.Scheduler
	clock        lifecycle.Clock
	build        BuildFunc
	emit         EmitFunc
	logger       zerolog.Logger

	pollCancel   lifecycle.CancelFunc
	pollAttempts int
}

// NewExtractor creates a commerce extractor with the default source chain
func NewExtractor(
	cfg config.CommerceConfig,
	contextStore storage.Store,
	sched lifecycle.Scheduler,
	clock lifecycle.Clock,
	build BuildFunc,
	emit EmitFunc,
	logger zerolog.Logger,
) *Extractor {
	return &Extractor{
		cfg:          cfg,
		sources:      defaultSources(),
		contextStore: contextStore,
		sched:        sched,
		clock:        clock,
		build:        build,
		emit:         emit,
		logger:       logger.With().Str("component", "CommerceExtractor").Logger(),
	}
}

// OnCartTrigger reacts to a cart submission or a matching network call.
// Extraction waits a short settle delay so the page can finish updating.
func (e *Extractor) OnCartTrigger(page Page) {
	e.sched.After(e.cfg.CartSettleDelay(), func() {
		e.handleCartAdd(page)
	})
}

// MatchesCartEndpoint reports whether a network request URL is a cart call
func (e *Extractor) MatchesCartEndpoint(requestURL string) bool {
	return e.cfg.CartEndpointPattern != "" &&
		strings.Contains(requestURL, e.cfg.CartEndpointPattern)
}

// ExtractProduct walks the source chain in priority order, each source
// filling only the fields still missing
func (e *Extractor) ExtractProduct(page Page) ProductData {
	var merged ProductData
	for _, source := range e.sources {
		data, ok := source.Extract(page)
		if !ok {
			continue
		}
		if merged.ID == "" {
			merged.ID = data.ID
		}
		if merged.Name == "" {
			merged.Name = data.Name
		}
		if merged.Price == 0 {
			merged.Price = data.Price
		}
		if merged.complete() {
			break
		}
	}
	return merged
}

func (e *Extractor) handleCartAdd(page Page) {
	data := e.ExtractProduct(page)
	if data.ID == "" {
		e.logger.Warn().Msg("Cannot track cart add: no product ID found")
		return
	}

	now := e.clock.Now().UnixMilli()
	last := e.loadLastCartEvent()
	if last.ProductID == data.ID && now-last.Timestamp < e.cfg.CartDedupWindow().Milliseconds() {
		e.logger.Debug().Str("product_id", data.ID).Msg("Duplicate cart event ignored")
		return
	}
	e.saveLastCartEvent(lastCartEvent{ProductID: data.ID, Timestamp: now})

	ev := e.build(event.TypeAddToCart)
	ev["product_id"] = data.ID
	ev["product_name"] = data.Name
	ev["product_price"] = data.Price
	ev["quantity"] = 1
	ev["url"] = page.URL()
	e.emit(ev)

	e.logger.Info().Str("product_id", data.ID).Msg("Cart add event sent")
}

func (e *Extractor) loadLastCartEvent() lastCartEvent {
	raw, ok := e.contextStore.Get(lastCartStorageKey)
	if !ok {
		return lastCartEvent{}
	}
	var last lastCartEvent
	if err := json.Unmarshal([]byte(raw), &last); err != nil {
		return lastCartEvent{}
	}
	return last
}

func (e *Extractor) saveLastCartEvent(last lastCartEvent) {
	raw, err := json.Marshal(last)
	if err != nil {
		return
	}
	e.contextStore.Set(lastCartStorageKey, string(raw), 0)
}
