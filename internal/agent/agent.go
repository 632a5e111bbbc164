// Package agent assembles the tracker: it owns the stores, the identity
// manager, the transports and the observers, and runs the notification
// loop that connects host signals to event production.
package agent

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/moadamda/tracker/internal/attribution"
	"github.com/moadamda/tracker/internal/commerce"
	"github.com/moadamda/tracker/internal/config"
	"github.com/moadamda/tracker/internal/dispatch"
	"github.com/moadamda/tracker/internal/errorwrapper"
	"github.com/moadamda/tracker/internal/event"
	"github.com/moadamda/tracker/internal/host"
	"github.com/moadamda/tracker/internal/identity"
	"github.com/moadamda/tracker/internal/lifecycle"
	"github.com/moadamda/tracker/internal/queue"
	"github.com/moadamda/tracker/internal/storage"
	"github.com/moadamda/tracker/internal/transport"
)

// activeContexts guards against a second agent attaching to the same
// host context, whether through the same Agent or a freshly built one
var (
	activeMu       sync.Mutex
	activeContexts = make(map[host.Host]struct{})
)

func claimContext(h host.Host) bool {
	activeMu.Lock()
	defer activeMu.Unlock()
	if _, loaded := activeContexts[h]; loaded {
		return false
	}
	activeContexts[h] = struct{}{}
	return true
}

func releaseContext(h host.Host) {
	activeMu.Lock()
	defer activeMu.Unlock()
	delete(activeContexts, h)
}

// Agent is one tracker instance bound to one host context
type Agent struct {
	cfg    *config.TrackerConfig
	host   host.Host
	logger zerolog.Logger

	durableStore storage.Store
	contextStore storage.Store

	identity     *identity.Manager
	capture      *attribution.Capture
	retryQueue   *queue.RetryQueue
	dispatcher   *dispatch.Dispatcher
	orchestrator *lifecycle.Orchestrator
	commerce     *commerce.Extractor

	clock  lifecycle.Clock
	cancel context.CancelFunc
	done   chan struct{}
}

// New wires an agent from its configuration. The durable store backs
// identity, the content cache and the retry queue; the context store
// holds what only needs to live as long as this host context.
func New(
	cfg *config.TrackerConfig,
	h host.Host,
	sched lifecycle.Scheduler,
	clock lifecycle.Clock,
	logger zerolog.Logger,
) *Agent {
	agentLogger := logger.With().Str("component", "TrackerAgent").Logger()

	durableStore := storage.NewStore(cfg.StorageConfig.Path, logger)
	contextStore := storage.NewMemoryStore(clock.Now)

	identityManager := identity.NewManager(durableStore, cfg.SessionConfig, logger)
	capture := attribution.NewCapture(cfg.AttributionConfig, contextStore, durableStore, logger)

	httpClient := transport.NewHTTPClient(cfg.SiteConfig.CollectorURL, cfg.TransportConfig, logger)
	retryQueue := queue.NewRetryQueue(durableStore, httpClient, cfg.SiteConfig.SiteID,
		cfg.RetryConfig.QueueCapacity, logger)

	inApp := transport.IsInApp(h.UserAgent(), cfg.TransportConfig.InAppPattern, logger)
	dispatcher := dispatch.NewDispatcher(cfg.SiteConfig.SiteID, httpClient, httpClient,
		retryQueue, identityManager, inApp, logger)

	a := &Agent{
		cfg:          cfg,
		host:         h,
		logger:       agentLogger,
		durableStore: durableStore,
		contextStore: contextStore,
		identity:     identityManager,
		capture:      capture,
		retryQueue:   retryQueue,
		dispatcher:   dispatcher,
		clock:        clock,
		done:         make(chan struct{}),
	}

	a.orchestrator = lifecycle.NewOrchestrator(sched, clock, cfg.LifecycleConfig,
		cfg.RetryConfig.Interval(), a.lifecycleHooks(), logger)
	a.commerce = commerce.NewExtractor(cfg.CommerceConfig, contextStore, sched, clock,
		a.buildEvent, a.emitEvent, logger)

	return a
}

// Start brings the tracker up: it claims the context, retries any
// events left over from a previous context, reports the page view,
// reacts to the page's commerce context and begins consuming host
// notifications. Returns an error only when another agent already owns
// this context.
func (a *Agent) Start(ctx context.Context) error {
	if !claimContext(a.host) {
		return errorwrapper.NewError("tracker already active in this context")
	}

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.logger.Info().Str("site_id", a.cfg.SiteConfig.SiteID).Msg("Tracker starting")

	a.retryQueue.Flush(runCtx)
	a.trackPageview(runCtx)
	a.detectPageContext()
	a.orchestrator.Start(a.host.ScrollY())

	go a.run(runCtx)
	return nil
}

// Stop tears the agent down without emitting terminal signals; those
// belong to the host's unload notification
func (a *Agent) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
	<-a.done
	a.orchestrator.Stop()
	a.dispatcher.Wait()
	a.logger.Info().Msg("Tracker stopped")
}

// Done is closed when the notification loop has ended
func (a *Agent) Done() <-chan struct{} { return a.done }

func (a *Agent) run(ctx context.Context) {
	defer func() {
		releaseContext(a.host)
		close(a.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-a.host.Notifications():
			if !ok {
				return
			}
			a.handle(ctx, n)
		}
	}
}

func (a *Agent) handle(ctx context.Context, n host.Notification) {
	switch n.Kind {
	case host.KindScroll:
		a.orchestrator.OnScroll(n.ScrollY)
	case host.KindHidden:
		a.orchestrator.OnHidden()
	case host.KindVisible:
		a.orchestrator.OnVisible()
	case host.KindUnload:
		a.orchestrator.OnUnload()
	case host.KindCartSubmit:
		a.commerce.OnCartTrigger(a.host)
	case host.KindRequest:
		if a.commerce.MatchesCartEndpoint(n.RequestURL) {
			a.commerce.OnCartTrigger(a.host)
		}
	case host.KindError:
		a.trackError(ctx, n.Error)
	}
}

// buildEvent creates the skeleton every producer starts from. Heartbeat
// and session-end records carry epoch-millisecond timestamps; the rest
// use RFC3339.
func (a *Agent) buildEvent(eventType string) event.Event {
	visitorID := a.identity.VisitorID()
	sessionID := a.identity.SessionID()
	now := a.clock.Now()

	switch eventType {
	case event.TypeHeartbeat, event.TypeSessionEnd:
		return event.NewEpoch(eventType, visitorID, sessionID, now)
	default:
		return event.New(eventType, visitorID, sessionID, now)
	}
}

func (a *Agent) emitEvent(ev event.Event) {
	a.dispatcher.Send(context.Background(), ev)
}

func (a *Agent) lifecycleHooks() lifecycle.Hooks {
	return lifecycle.Hooks{
		SendHeartbeat: func() {
			a.dispatcher.SendDurable(context.Background(), a.buildEvent(event.TypeHeartbeat))
		},
		SendSessionEnd: func() {
			a.dispatcher.SendDurable(context.Background(), a.buildEvent(event.TypeSessionEnd))
		},
		SendScrollDepth: func(maxScroll int) {
			ev := a.buildEvent(event.TypeScrollDepth)
			ev["url"] = a.host.URL()
			ev["max_scroll_px"] = maxScroll
			ev["document_height"] = a.host.DocumentHeight()
			ev["viewport_height"] = a.host.ViewportHeight()
			a.dispatcher.SendDurable(context.Background(), ev)
		},
		FlushQueue: func() {
			a.retryQueue.Flush(context.Background())
		},
	}
}

func (a *Agent) trackPageview(ctx context.Context) {
	pageURL := a.host.URL()
	width, height := a.host.ScreenSize()

	ev := a.buildEvent(event.TypePageview)
	ev["url"] = pageURL
	ev["title"] = a.host.Title()
	ev["referrer"] = a.host.Referrer()
	ev["screen_width"] = width
	ev["screen_height"] = height
	ev["user_agent"] = a.host.UserAgent()
	ev["device_type"] = event.DeviceType(a.host.UserAgent())

	params := a.captureAttribution(pageURL)
	if len(params) > 0 {
		ev["utm_source"] = params["utm_source"]
		ev["utm_medium"] = params["utm_medium"]
		ev["utm_campaign"] = params["utm_campaign"]
		ev["utm_params"] = params
	}

	a.dispatcher.Send(ctx, ev)
	a.logger.Info().Str("url", pageURL).Msg("Pageview tracked")
}

// captureAttribution runs the full attribution pipeline for this
// navigation: extract from the query, persist or restore across
// navigations, then recover a truncated content label from the cache.
func (a *Agent) captureAttribution(pageURL string) map[string]string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Cannot parse page URL for attribution")
		return nil
	}

	params := a.capture.ExtractFromRawQuery(parsed.RawQuery)
	params = a.capture.PersistOrRestore(params)
	a.capture.RecoverContent(params)
	return params
}

// detectPageContext reacts to where in the storefront this page sits.
// The branches are disjoint: a page is at most one of an order
// confirmation, an order form or a coupon selector.
func (a *Agent) detectPageContext() {
	path := a.host.URL()
	if parsed, err := url.Parse(path); err == nil {
		path = parsed.Path
	}

	cfg := a.cfg.CommerceConfig
	switch {
	case strings.Contains(path, cfg.OrderResultPathPattern):
		a.logger.Info().Msg("Order confirmation page detected")
		a.commerce.TrackPurchase(a.host)
	case strings.Contains(path, cfg.OrderFormPathPattern):
		ev := a.buildEvent(event.TypeCheckoutAttempt)
		ev["url"] = a.host.URL()
		ev["referrer"] = a.host.Referrer()
		a.dispatcher.Send(context.Background(), ev)
	case strings.Contains(path, cfg.CouponSelectPathPattern):
		ev := a.buildEvent(event.TypeCouponSelect)
		ev["url"] = a.host.URL()
		ev["referrer"] = a.host.Referrer()
		a.dispatcher.Send(context.Background(), ev)
	}
}

func (a *Agent) trackError(ctx context.Context, detail host.ErrorDetail) {
	ev := a.buildEvent(event.TypeTrackerError)
	ev["message"] = detail.Message
	ev["filename"] = detail.Filename
	ev["lineno"] = detail.Line
	ev["colno"] = detail.Col
	a.dispatcher.SendDurable(ctx, ev)
}
