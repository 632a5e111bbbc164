package lifecycle

import (
	"sync"
	"time"
)

type fakeTimer struct {
	at        time.Time
	interval  time.Duration // zero for one-shot tasks
	fn        func()
	cancelled bool
}

// FakeScheduler is a Scheduler and Clock driven by virtual time.
// Advance fires due tasks synchronously in timestamp order, which makes
// every timer-driven behavior in the tracker testable without
// wall-clock waits.
type FakeScheduler struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

// NewFakeScheduler creates a fake scheduler starting at the given time
func NewFakeScheduler(start time.Time) *FakeScheduler {
	return &FakeScheduler{now: start}
}

// Now returns the current virtual time
func (fs *FakeScheduler) Now() time.Time {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.now
}

// Every schedules fn at the given virtual-time interval
func (fs *FakeScheduler) Every(interval time.Duration, fn func()) CancelFunc {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	timer := &fakeTimer{at: fs.now.Add(interval), interval: interval, fn: fn}
	fs.timers = append(fs.timers, timer)
	return fs.cancelFunc(timer)
}

// After schedules fn once at the given virtual-time delay
func (fs *FakeScheduler) After(delay time.Duration, fn func()) CancelFunc {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	timer := &fakeTimer{at: fs.now.Add(delay), fn: fn}
	fs.timers = append(fs.timers, timer)
	return fs.cancelFunc(timer)
}

func (fs *FakeScheduler) cancelFunc(timer *fakeTimer) CancelFunc {
	return func() {
		fs.mu.Lock()
		defer fs.mu.Unlock()
		timer.cancelled = true
	}
}

// Advance moves virtual time forward, firing every due task in order
func (fs *FakeScheduler) Advance(d time.Duration) {
	fs.mu.Lock()
	target := fs.now.Add(d)

	for {
		var next *fakeTimer
		for _, timer := range fs.timers {
			if timer.cancelled {
				continue
			}
			if next == nil || timer.at.Before(next.at) {
				next = timer
			}
		}
		if next == nil || next.at.After(target) {
			break
		}

		fs.now = next.at
		if next.interval > 0 {
			next.at = next.at.Add(next.interval)
		} else {
			next.cancelled = true
		}

		fn := next.fn
		fs.mu.Unlock()
		fn()
		fs.mu.Lock()
	}

	fs.now = target
	fs.mu.Unlock()
}
