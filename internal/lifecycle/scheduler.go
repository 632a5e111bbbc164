// Package lifecycle owns the tracker's timers and the page lifecycle
// state machine that decides when terminal signals must be flushed.
package lifecycle

import (
	"sync"
	"time"
)

// Clock abstracts wall-clock reads so timer-driven behavior is testable
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by the wall clock
func SystemClock() Clock { return systemClock{} }

// CancelFunc stops a scheduled task. Safe to call more than once.
type CancelFunc func()

// Scheduler schedules repeating and one-shot tasks. The production
// implementation uses real timers; tests inject a fake that advances
// virtual time.
type Scheduler interface {
	// Every runs fn repeatedly at the given interval until cancelled
	Every(interval time.Duration, fn func()) CancelFunc
	// After runs fn once after the given delay unless cancelled
	After(delay time.Duration, fn func()) CancelFunc
}

// TickerScheduler is the wall-clock Scheduler
type TickerScheduler struct{}

// NewTickerScheduler creates the production scheduler
func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{}
}

// Every runs fn repeatedly at the given interval until cancelled
func (ts *TickerScheduler) Every(interval time.Duration, fn func()) CancelFunc {
	stop := make(chan struct{})
	var once sync.Once

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-stop:
				return
			}
		}
	}()

	return func() {
		once.Do(func() { close(stop) })
	}
}

// After runs fn once after the given delay unless cancelled
func (ts *TickerScheduler) After(delay time.Duration, fn func()) CancelFunc {
	timer := time.AfterFunc(delay, fn)
	var once sync.Once
	return func() {
		once.Do(func() { timer.Stop() })
	}
}
