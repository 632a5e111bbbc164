// Package queue holds events whose transmission could not be confirmed
// until a later flush can retry them.
package queue

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/moadamda/tracker/internal/event"
	"github.com/moadamda/tracker/internal/storage"
	"github.com/moadamda/tracker/internal/transport"
)

const failedEventsStorageKey = "_ma_failed_events"

// RetryQueue is a bounded, durable-for-the-context list of failed
// events. The bound keeps a sustained outage from growing the store
// without limit: big enough to ride out a network blip, small enough
// not to matter in constrained storage.
type RetryQueue struct {
	mu       sync.Mutex
	store    storage.Store
	confirm  transport.Confirmable
	siteID   string
	capacity int
	logger   zerolog.Logger
}

// NewRetryQueue creates a retry queue persisted in the given store
func NewRetryQueue(
	store storage.Store,
	confirm transport.Confirmable,
	siteID string,
	capacity int,
	logger zerolog.Logger,
) *RetryQueue {
	return &RetryQueue{
		store:    store,
		confirm:  confirm,
		siteID:   siteID,
		capacity: capacity,
		logger:   logger.With().Str("component", "RetryQueue").Logger(),
	}
}

// Enqueue saves a failed event for retry, deduplicated by
// (type, timestamp) and truncated to the most recent entries
func (q *RetryQueue) Enqueue(ev event.Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	events := q.load()
	for _, existing := range events {
		if existing.Type() == ev.Type() && existing.TimestampKey() == ev.TimestampKey() {
			return
		}
	}

	events = append(events, ev)
	if len(events) > q.capacity {
		events = events[len(events)-q.capacity:]
	}

	q.save(events)
	q.logger.Debug().Str("type", ev.Type()).Int("queued", len(events)).Msg("Failed event saved for retry")
}

// Flush attempts one confirmable transmission of the whole queued
// batch. Success clears the queue; failure leaves it untouched for the
// next attempt.
func (q *RetryQueue) Flush(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()

	events := q.load()
	if len(events) == 0 {
		return
	}

	q.logger.Info().Int("count", len(events)).Msg("Retrying failed events")

	if err := q.confirm.Send(ctx, event.NewBatch(q.siteID, events...)); err != nil {
		q.logger.Debug().Err(err).Msg("Retry failed, keeping queue for next flush")
		return
	}

	q.store.Delete(failedEventsStorageKey)
	q.logger.Info().Int("count", len(events)).Msg("Failed events delivered")
}

// Len returns the number of queued events
func (q *RetryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.load())
}

func (q *RetryQueue) load() []event.Event {
	raw, ok := q.store.Get(failedEventsStorageKey)
	if !ok {
		return nil
	}
	var events []event.Event
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		q.logger.Warn().Err(err).Msg("Retry queue corrupted, resetting")
		q.store.Delete(failedEventsStorageKey)
		return nil
	}
	return events
}

func (q *RetryQueue) save(events []event.Event) {
	raw, err := json.Marshal(events)
	if err != nil {
		return
	}
	q.store.Set(failedEventsStorageKey, string(raw), 0)
}
