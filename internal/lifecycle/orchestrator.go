package lifecycle

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/moadamda/tracker/internal/config"
)

// State is the page lifecycle state
type State int

const (
	// StateActive means the page is in the foreground
	StateActive State = iota
	// StateBackgrounded means foreground visibility was lost or an
	// unload signal was received
	StateBackgrounded
)

// Hooks are the actions the orchestrator triggers. Supplied by the
// agent so the orchestrator stays free of payload knowledge.
type Hooks struct {
	// SendHeartbeat fires on every heartbeat tick to keep the session
	// window sliding even with no user interaction
	SendHeartbeat func()
	// SendSessionEnd flushes the session-ending signal
	SendSessionEnd func()
	// SendScrollDepth flushes the running scroll maximum
	SendScrollDepth func(maxScroll int)
	// FlushQueue retries queued failed events
	FlushQueue func()
}

// Orchestrator drives the heartbeat, the scroll observer and the
// terminal flushes around visibility transitions. One-shot guards make
// the terminal signals fire exactly once per foreground segment even
// when an unload and a visibility loss arrive for the same teardown.
type Orchestrator struct {
	mu    sync.Mutex
	state State

	sched         Scheduler
	clock         Clock
	cfg           config.LifecycleConfig
	retryInterval time.Duration
	hooks         Hooks
	logger        zerolog.Logger

	heartbeatCancel CancelFunc
	retryCancel     CancelFunc

	scrollMax      int
	scrollSent     bool
	sessionEndSent bool
	lastScrollAt   time.Time
}

// NewOrchestrator creates an orchestrator in the Active state
func NewOrchestrator(
	sched Scheduler,
	clock Clock,
	cfg config.LifecycleConfig,
	retryInterval time.Duration,
	hooks Hooks,
	logger zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		state:         StateActive,
		sched:         sched,
		clock:         clock,
		cfg:           cfg,
		retryInterval: retryInterval,
		hooks:         hooks,
		logger:        logger.With().Str("component", "LifecycleOrchestrator").Logger(),
	}
}

// Start begins the heartbeat and retry timers and seeds the scroll
// maximum with the page's initial offset (the page may load scrolled).
func (o *Orchestrator) Start(initialScroll int) {
	o.mu.Lock()
	o.scrollMax = initialScroll
	o.heartbeatCancel = o.sched.Every(o.cfg.HeartbeatInterval(), o.hooks.SendHeartbeat)
	o.retryCancel = o.sched.Every(o.retryInterval, o.hooks.FlushQueue)
	o.mu.Unlock()

	o.logger.Info().
		Dur("heartbeat_interval", o.cfg.HeartbeatInterval()).
		Dur("retry_interval", o.retryInterval).
		Msg("Lifecycle started")
}

// OnScroll records a scroll sample, throttled and keeping only the
// running maximum
func (o *Orchestrator) OnScroll(y int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := o.clock.Now()
	if now.Sub(o.lastScrollAt) < o.cfg.ScrollThrottle() {
		return
	}
	o.lastScrollAt = now

	if y > o.scrollMax {
		o.scrollMax = y
	}
}

// ScrollMax returns the running scroll maximum
func (o *Orchestrator) ScrollMax() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.scrollMax
}

// OnHidden handles loss of foreground visibility
func (o *Orchestrator) OnHidden() {
	o.logger.Debug().Msg("Page hidden, flushing session data")
	o.background()
}

// OnUnload handles the unload signal. Shares the one-shot guards with
// OnHidden: both firing for the same teardown flushes once.
func (o *Orchestrator) OnUnload() {
	o.logger.Debug().Msg("Unload signal received")
	o.background()
}

func (o *Orchestrator) background() {
	o.mu.Lock()
	o.state = StateBackgrounded
	o.stopHeartbeatLocked()

	var flushScroll int
	doFlushScroll := false
	if !o.scrollSent && o.scrollMax > 0 {
		o.scrollSent = true
		doFlushScroll = true
		flushScroll = o.scrollMax
	}

	doSessionEnd := false
	if !o.sessionEndSent {
		o.sessionEndSent = true
		doSessionEnd = true
	}
	o.mu.Unlock()

	// Hooks run outside the lock: they dispatch events
	if doFlushScroll {
		o.hooks.SendScrollDepth(flushScroll)
	}
	if doSessionEnd {
		o.hooks.SendSessionEnd()
	}
}

// OnVisible handles foreground visibility being regained: the one-shot
// guards reset so a new logical session segment can emit fresh terminal
// signals, the heartbeat restarts, and queued failures get a retry.
func (o *Orchestrator) OnVisible() {
	o.mu.Lock()
	o.state = StateActive
	o.sessionEndSent = false
	o.scrollSent = false
	o.stopHeartbeatLocked()
	o.heartbeatCancel = o.sched.Every(o.cfg.HeartbeatInterval(), o.hooks.SendHeartbeat)
	o.mu.Unlock()

	o.logger.Debug().Msg("Page visible, resuming tracking")
	o.hooks.FlushQueue()
}

// State returns the current lifecycle state
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Stop cancels all timers
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stopHeartbeatLocked()
	if o.retryCancel != nil {
		o.retryCancel()
		o.retryCancel = nil
	}
}

func (o *Orchestrator) stopHeartbeatLocked() {
	if o.heartbeatCancel != nil {
		o.heartbeatCancel()
		o.heartbeatCancel = nil
	}
}
