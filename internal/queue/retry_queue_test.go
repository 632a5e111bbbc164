package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/moadamda/tracker/internal/errorwrapper"
	"github.com/moadamda/tracker/internal/event"
	"github.com/moadamda/tracker/internal/storage"
)

type fakeConfirmable struct {
	mu      sync.Mutex
	fail    bool
	batches []event.Batch
}

func (fc *fakeConfirmable) Send(_ context.Context, batch event.Batch) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.fail {
		return errorwrapper.ErrTransportFailure
	}
	fc.batches = append(fc.batches, batch)
	return nil
}

func newTestQueue(capacity int) (*RetryQueue, *fakeConfirmable) {
	confirm := &fakeConfirmable{}
	q := NewRetryQueue(storage.NewMemoryStore(nil), confirm, "test-site", capacity, zerolog.Nop())
	return q, confirm
}

func testEvent(eventType string, ts time.Time) event.Event {
	return event.New(eventType, "visitor", "session", ts)
}

func TestRetryQueue_EnqueueBounded(t *testing.T) {
	q, _ := newTestQueue(10)

	base := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		ev := testEvent(event.TypePageview, base.Add(time.Duration(i)*time.Second))
		ev["seq"] = i
		q.Enqueue(ev)
	}

	if got := q.Len(); got != 10 {
		t.Fatalf("queue length = %d, want 10", got)
	}

	// The survivors are the most recent ten
	events := q.load()
	if first := events[0]["seq"]; fmt.Sprint(first) != "5" {
		t.Errorf("oldest surviving event seq = %v, want 5", first)
	}
}

func TestRetryQueue_EnqueueDeduplicates(t *testing.T) {
	q, _ := newTestQueue(10)

	ts := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	q.Enqueue(testEvent(event.TypePageview, ts))
	q.Enqueue(testEvent(event.TypePageview, ts))
	q.Enqueue(testEvent(event.TypeHeartbeat, ts))

	if got := q.Len(); got != 2 {
		t.Errorf("queue length = %d, want 2 (same type+timestamp deduplicated)", got)
	}
}

func TestRetryQueue_EnqueueDeduplicatesEpochTimestamps(t *testing.T) {
	q, _ := newTestQueue(10)

	// The stored copy round-trips through JSON, turning the epoch
	// int64 into a float64; the fresh duplicate must still match it
	ts := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	q.Enqueue(event.NewEpoch(event.TypeHeartbeat, "visitor", "session", ts))
	q.Enqueue(event.NewEpoch(event.TypeHeartbeat, "visitor", "session", ts))

	if got := q.Len(); got != 1 {
		t.Errorf("queue length = %d, want 1 (epoch duplicate deduplicated)", got)
	}
}

func TestRetryQueue_FlushClearsOnSuccess(t *testing.T) {
	q, confirm := newTestQueue(10)

	ts := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	q.Enqueue(testEvent(event.TypePageview, ts))
	q.Enqueue(testEvent(event.TypeScrollDepth, ts.Add(time.Second)))

	q.Flush(context.Background())

	if got := q.Len(); got != 0 {
		t.Errorf("queue length after successful flush = %d, want 0", got)
	}
	if len(confirm.batches) != 1 {
		t.Fatalf("flush sent %d batches, want 1", len(confirm.batches))
	}
	if len(confirm.batches[0].Events) != 2 {
		t.Errorf("flushed batch carries %d events, want 2", len(confirm.batches[0].Events))
	}
	if confirm.batches[0].SiteID != "test-site" {
		t.Errorf("flushed batch site = %q, want test-site", confirm.batches[0].SiteID)
	}
}

func TestRetryQueue_FlushKeepsOnFailure(t *testing.T) {
	q, confirm := newTestQueue(10)
	confirm.fail = true

	ts := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	q.Enqueue(testEvent(event.TypePageview, ts))

	q.Flush(context.Background())

	if got := q.Len(); got != 1 {
		t.Errorf("queue length after failed flush = %d, want 1", got)
	}

	// A later flush delivers the same event
	confirm.fail = false
	q.Flush(context.Background())
	if got := q.Len(); got != 0 {
		t.Errorf("queue length after recovery flush = %d, want 0", got)
	}
}

func TestRetryQueue_FlushEmptyIsNoop(t *testing.T) {
	q, confirm := newTestQueue(10)

	q.Flush(context.Background())

	if len(confirm.batches) != 0 {
		t.Error("empty queue must not produce a transmission")
	}
}
