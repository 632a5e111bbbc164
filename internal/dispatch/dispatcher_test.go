package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/moadamda/tracker/internal/config"
	"github.com/moadamda/tracker/internal/errorwrapper"
	"github.com/moadamda/tracker/internal/event"
	"github.com/moadamda/tracker/internal/identity"
	"github.com/moadamda/tracker/internal/queue"
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

func (fc *fakeConfirmable) sent() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return len(fc.batches)
}

type fakeDurable struct {
	mu      sync.Mutex
	reject  bool
	batches []event.Batch
}

func (fd *fakeDurable) Enqueue(batch event.Batch) bool {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	if fd.reject {
		return false
	}
	fd.batches = append(fd.batches, batch)
	return true
}

func (fd *fakeDurable) sent() int {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	return len(fd.batches)
}

func newTestDispatcher(inApp bool) (*Dispatcher, *fakeConfirmable, *fakeDurable, *queue.RetryQueue) {
	confirm := &fakeConfirmable{}
	durable := &fakeDurable{}
	store := storage.NewMemoryStore(nil)
	retryQueue := queue.NewRetryQueue(store, confirm, "test-site", 10, zerolog.Nop())
	identityManager := identity.NewManager(store, config.NewDefaultSessionConfig(), zerolog.Nop())
	d := NewDispatcher("test-site", confirm, durable, retryQueue, identityManager, inApp, zerolog.Nop())
	return d, confirm, durable, retryQueue
}

func testEvent(eventType string) event.Event {
	return event.New(eventType, "visitor", "session", time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC))
}

func TestDispatcher_SendNormalBrowser(t *testing.T) {
	d, confirm, durable, retryQueue := newTestDispatcher(false)

	d.Send(context.Background(), testEvent(event.TypePageview))
	d.Wait()

	if confirm.sent() != 1 {
		t.Errorf("confirmable sends = %d, want 1", confirm.sent())
	}
	if durable.sent() != 0 {
		t.Errorf("durable sends = %d, want 0 outside embedding clients", durable.sent())
	}
	if retryQueue.Len() != 0 {
		t.Errorf("retry queue = %d, want 0 after success", retryQueue.Len())
	}
}

func TestDispatcher_SendInAppUsesBothChannels(t *testing.T) {
	d, confirm, durable, _ := newTestDispatcher(true)

	d.Send(context.Background(), testEvent(event.TypePageview))
	d.Wait()

	if confirm.sent() != 1 {
		t.Errorf("confirmable sends = %d, want 1", confirm.sent())
	}
	if durable.sent() != 1 {
		t.Errorf("durable sends = %d, want 1 inside an embedding client", durable.sent())
	}
}

func TestDispatcher_SendFailureQueues(t *testing.T) {
	d, confirm, _, retryQueue := newTestDispatcher(false)
	confirm.fail = true

	d.Send(context.Background(), testEvent(event.TypePageview))
	d.Wait()

	if retryQueue.Len() != 1 {
		t.Errorf("retry queue = %d, want 1 after confirmable failure", retryQueue.Len())
	}
}

func TestDispatcher_SendDurablePrefersDurable(t *testing.T) {
	d, confirm, durable, _ := newTestDispatcher(false)

	d.SendDurable(context.Background(), testEvent(event.TypeSessionEnd))

	if durable.sent() != 1 {
		t.Errorf("durable sends = %d, want 1", durable.sent())
	}
	if confirm.sent() != 0 {
		t.Errorf("confirmable sends = %d, want 0 when durable accepted", confirm.sent())
	}
}

func TestDispatcher_SendDurableFallsBackToConfirmable(t *testing.T) {
	d, confirm, durable, retryQueue := newTestDispatcher(false)
	durable.reject = true

	d.SendDurable(context.Background(), testEvent(event.TypeSessionEnd))

	if confirm.sent() != 1 {
		t.Errorf("confirmable sends = %d, want 1 as fallback", confirm.sent())
	}
	if retryQueue.Len() != 0 {
		t.Errorf("retry queue = %d, want 0 when fallback succeeded", retryQueue.Len())
	}
}

func TestDispatcher_SendDurableBothFailQueues(t *testing.T) {
	d, confirm, durable, retryQueue := newTestDispatcher(false)
	durable.reject = true
	confirm.fail = true

	d.SendDurable(context.Background(), testEvent(event.TypeSessionEnd))

	if retryQueue.Len() != 1 {
		t.Errorf("retry queue = %d, want 1 when both channels failed", retryQueue.Len())
	}
}
