package lifecycle

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/moadamda/tracker/internal/config"
)

type hookRecorder struct {
	mu          sync.Mutex
	heartbeats  int
	sessionEnds int
	scrollSends []int
	flushes     int
}

func (hr *hookRecorder) hooks() Hooks {
	return Hooks{
		SendHeartbeat: func() {
			hr.mu.Lock()
			defer hr.mu.Unlock()
			hr.heartbeats++
		},
		SendSessionEnd: func() {
			hr.mu.Lock()
			defer hr.mu.Unlock()
			hr.sessionEnds++
		},
		SendScrollDepth: func(maxScroll int) {
			hr.mu.Lock()
			defer hr.mu.Unlock()
			hr.scrollSends = append(hr.scrollSends, maxScroll)
		},
		FlushQueue: func() {
			hr.mu.Lock()
			defer hr.mu.Unlock()
			hr.flushes++
		},
	}
}

func newTestOrchestrator() (*Orchestrator, *FakeScheduler, *hookRecorder) {
	sched := NewFakeScheduler(time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC))
	recorder := &hookRecorder{}
	o := NewOrchestrator(sched, sched, config.NewDefaultLifecycleConfig(),
		config.NewDefaultRetryConfig().Interval(), recorder.hooks(), zerolog.Nop())
	return o, sched, recorder
}

func TestOrchestrator_HeartbeatCadence(t *testing.T) {
	o, sched, recorder := newTestOrchestrator()
	o.Start(0)

	sched.Advance(95 * time.Second)

	if recorder.heartbeats != 3 {
		t.Errorf("heartbeats after 95s = %d, want 3", recorder.heartbeats)
	}
}

func TestOrchestrator_RetryFlushCadence(t *testing.T) {
	o, sched, recorder := newTestOrchestrator()
	o.Start(0)

	sched.Advance(65 * time.Second)

	if recorder.flushes != 2 {
		t.Errorf("queue flushes after 65s = %d, want 2", recorder.flushes)
	}
}

func TestOrchestrator_ScrollRunningMax(t *testing.T) {
	o, sched, _ := newTestOrchestrator()
	o.Start(100)

	sched.Advance(time.Second)
	o.OnScroll(500)
	sched.Advance(time.Second)
	o.OnScroll(300)

	if got := o.ScrollMax(); got != 500 {
		t.Errorf("scroll max = %d, want 500 (running maximum, never decreasing)", got)
	}
}

func TestOrchestrator_ScrollSeededByInitialOffset(t *testing.T) {
	o, _, _ := newTestOrchestrator()
	o.Start(240)

	if got := o.ScrollMax(); got != 240 {
		t.Errorf("scroll max = %d, want the initial page offset 240", got)
	}
}

func TestOrchestrator_ScrollThrottled(t *testing.T) {
	o, sched, _ := newTestOrchestrator()
	o.Start(0)

	sched.Advance(time.Second)
	o.OnScroll(100)
	// Within the throttle window, even a larger sample is dropped
	o.OnScroll(900)

	if got := o.ScrollMax(); got != 100 {
		t.Errorf("scroll max = %d, want 100 (second sample inside throttle window)", got)
	}

	sched.Advance(150 * time.Millisecond)
	o.OnScroll(900)
	if got := o.ScrollMax(); got != 900 {
		t.Errorf("scroll max = %d, want 900 after throttle window passed", got)
	}
}

func TestOrchestrator_HiddenFlushesOnce(t *testing.T) {
	o, sched, recorder := newTestOrchestrator()
	o.Start(0)

	sched.Advance(time.Second)
	o.OnScroll(420)

	o.OnHidden()
	o.OnUnload() // same teardown, must not flush again

	if recorder.sessionEnds != 1 {
		t.Errorf("session ends = %d, want exactly 1", recorder.sessionEnds)
	}
	if len(recorder.scrollSends) != 1 || recorder.scrollSends[0] != 420 {
		t.Errorf("scroll sends = %v, want [420]", recorder.scrollSends)
	}
	if o.State() != StateBackgrounded {
		t.Error("state should be Backgrounded after hidden")
	}
}

func TestOrchestrator_NoScrollFlushAtZero(t *testing.T) {
	o, _, recorder := newTestOrchestrator()
	o.Start(0)

	o.OnHidden()

	if len(recorder.scrollSends) != 0 {
		t.Errorf("scroll sends = %v, want none when nothing was scrolled", recorder.scrollSends)
	}
	if recorder.sessionEnds != 1 {
		t.Errorf("session ends = %d, want 1", recorder.sessionEnds)
	}
}

func TestOrchestrator_HeartbeatStopsWhileHidden(t *testing.T) {
	o, sched, recorder := newTestOrchestrator()
	o.Start(0)

	sched.Advance(35 * time.Second)
	beforeHidden := recorder.heartbeats

	o.OnHidden()
	sched.Advance(5 * time.Minute)

	if recorder.heartbeats != beforeHidden {
		t.Errorf("heartbeats advanced while hidden: %d -> %d", beforeHidden, recorder.heartbeats)
	}
}

func TestOrchestrator_VisibleResetsGuards(t *testing.T) {
	o, sched, recorder := newTestOrchestrator()
	o.Start(0)

	sched.Advance(time.Second)
	o.OnScroll(300)
	o.OnHidden()

	o.OnVisible()
	if o.State() != StateActive {
		t.Error("state should be Active after visibility regained")
	}
	if recorder.flushes == 0 {
		t.Error("regaining visibility should flush the retry queue")
	}

	// Heartbeat resumes
	before := recorder.heartbeats
	sched.Advance(35 * time.Second)
	if recorder.heartbeats != before+1 {
		t.Errorf("heartbeats = %d, want %d after resuming", recorder.heartbeats, before+1)
	}

	// A second teardown flushes terminal signals again
	o.OnHidden()
	if recorder.sessionEnds != 2 {
		t.Errorf("session ends = %d, want 2 across two foreground segments", recorder.sessionEnds)
	}
	if len(recorder.scrollSends) != 2 {
		t.Errorf("scroll sends = %v, want two flushes across two segments", recorder.scrollSends)
	}
}

func TestOrchestrator_StopCancelsTimers(t *testing.T) {
	o, sched, recorder := newTestOrchestrator()
	o.Start(0)

	o.Stop()
	sched.Advance(5 * time.Minute)

	if recorder.heartbeats != 0 || recorder.flushes != 0 {
		t.Errorf("timers fired after Stop: heartbeats=%d flushes=%d", recorder.heartbeats, recorder.flushes)
	}
}
