// Package dispatch chooses the transmission strategy for each event and
// guarantees that no failure path ever escapes to the caller: every
// outcome ends in a delivered batch, a queued retry or a logged warning.
package dispatch

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/moadamda/tracker/internal/event"
	"github.com/moadamda/tracker/internal/identity"
	"github.com/moadamda/tracker/internal/queue"
	"github.com/moadamda/tracker/internal/transport"
)

// Dispatcher transmits events, refreshing the session window as a side
// effect of every attempt.
type Dispatcher struct {
	siteID   string
	confirm  transport.Confirmable
	durable  transport.Durable
	queue    *queue.RetryQueue
	identity *identity.Manager
	inApp    bool
	logger   zerolog.Logger
	inflight sync.WaitGroup
}

// NewDispatcher creates a dispatcher. inApp switches to the
// dual-channel strategy used inside embedding clients, where a page can
// be torn down before a confirmable request completes.
func NewDispatcher(
	siteID string,
	confirm transport.Confirmable,
	durable transport.Durable,
	retryQueue *queue.RetryQueue,
	identityManager *identity.Manager,
	inApp bool,
	logger zerolog.Logger,
) *Dispatcher {
	return &Dispatcher{
		siteID:   siteID,
		confirm:  confirm,
		durable:  durable,
		queue:    retryQueue,
		identity: identityManager,
		inApp:    inApp,
		logger:   logger.With().Str("component", "Dispatcher").Logger(),
	}
}

// Send transmits one event on the normal path. Inside an embedding
// client both channels fire concurrently: the durable one so the event
// survives an immediate teardown, the confirmable one so a failure can
// still be queued for retry. Never returns an error.
func (d *Dispatcher) Send(ctx context.Context, ev event.Event) {
	d.identity.RefreshSession()

	batch := event.NewBatch(d.siteID, ev)

	if d.inApp {
		if !d.durable.Enqueue(batch) {
			d.logger.Debug().Str("type", ev.Type()).Msg("Durable channel rejected batch")
		}
	}

	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		if err := d.confirm.Send(ctx, batch); err != nil {
			d.logger.Warn().Err(err).Str("type", ev.Type()).Msg("Send failed, queueing for retry")
			d.queue.Enqueue(ev)
			return
		}
		d.logger.Debug().Str("type", ev.Type()).Msg("Event sent")
	}()
}

// SendDurable transmits one event on the teardown path: the durable
// channel is preferred, the confirmable one is a fallback, and if both
// fail the event waits for the next execution context. Never returns an
// error.
func (d *Dispatcher) SendDurable(ctx context.Context, ev event.Event) {
	d.identity.RefreshSession()

	batch := event.NewBatch(d.siteID, ev)

	if d.durable.Enqueue(batch) {
		d.logger.Debug().Str("type", ev.Type()).Msg("Event handed to durable channel")
		return
	}

	if err := d.confirm.Send(ctx, batch); err != nil {
		d.logger.Warn().Err(err).Str("type", ev.Type()).Msg("Both channels failed, queueing for retry")
		d.queue.Enqueue(ev)
	}
}

// Wait blocks until all in-flight confirmable sends have completed.
// Used on shutdown and in tests. The durable channel offers no
// completion signal, so it is not waited on.
func (d *Dispatcher) Wait() {
	d.inflight.Wait()
}
