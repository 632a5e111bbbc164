// Package transport provides the two transmission primitives the
// dispatcher chooses between: a confirmable channel that reports
// success or failure, and a durable-enqueue channel that is accepted
// immediately and survives the caller's teardown at the cost of never
// reporting an outcome.
package transport

import (
	"context"

	"github.com/moadamda/tracker/internal/event"
)

// Confirmable transmits a batch and reports whether the collector
// accepted it. May not survive immediate context teardown.
type Confirmable interface {
	Send(ctx context.Context, batch event.Batch) error
}

// Durable hands a batch off for delivery and reports only whether it
// was accepted for sending. No outcome is ever observable, so failures
// on this channel are never retried.
type Durable interface {
	Enqueue(batch event.Batch) bool
}
