// Package rodhost adapts a live browser page driven by go-rod into the
// tracker's Host interface.
package rodhost

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/rs/zerolog"
	"github.com/ysmood/gson"

	"github.com/moadamda/tracker/internal/commerce"
	"github.com/moadamda/tracker/internal/host"
)

// orderDataGlobal is the structured order object the storefront exposes
// on the confirmation page
const orderDataGlobal = "EC_FRONT_EXTERNAL_SCRIPT_VARIABLE_DATA"

// RodHost implements host.Host against a live page
type RodHost struct {
	page          *rod.Page
	logger        zerolog.Logger
	notifications chan host.Notification
	stopExpose    func() error
}

// Attach wires the page's lifecycle events into a RodHost. The page
// must already be navigated and loaded.
func Attach(page *rod.Page, logger zerolog.Logger) (*RodHost, error) {
	h := &RodHost{
		page:          page,
		logger:        logger.With().Str("component", "RodHost").Logger(),
		notifications: make(chan host.Notification, 64),
	}

	stop, err := page.Expose("maHostNotify", h.handleNotify)
	if err != nil {
		return nil, err
	}
	h.stopExpose = stop

	if _, err := page.Eval(listenerScript); err != nil {
		_ = stop()
		return nil, err
	}

	return h, nil
}

// listenerScript attaches the page-side observers and routes every
// signal through the exposed binding. The cart submission hook wraps
// the storefront's native submit function; the network hook wraps fetch.
const listenerScript = `() => {
	const notify = (msg) => { try { window.maHostNotify(JSON.stringify(msg)); } catch (e) {} };

	window.addEventListener('scroll', () => {
		notify({ kind: 'scroll', y: Math.floor(window.scrollY || window.pageYOffset || 0) });
	}, { passive: true });

	document.addEventListener('visibilitychange', () => {
		notify({ kind: document.visibilityState === 'hidden' ? 'hidden' : 'visible' });
	});

	window.addEventListener('pagehide', () => notify({ kind: 'unload' }));
	window.addEventListener('beforeunload', () => notify({ kind: 'unload' }));

	window.addEventListener('error', (e) => {
		notify({
			kind: 'error',
			message: e.message || 'Unknown error',
			filename: e.filename || '',
			lineno: e.lineno || 0,
			colno: e.colno || 0
		});
	});

	if (typeof window.product_submit === 'function') {
		const original = window.product_submit;
		window.product_submit = function () {
			notify({ kind: 'cart_submit' });
			return original.apply(this, arguments);
		};
	}

	if (window.fetch) {
		const originalFetch = window.fetch;
		window.fetch = function (input) {
			try { notify({ kind: 'request', url: String(input && input.url ? input.url : input) }); } catch (e) {}
			return originalFetch.apply(this, arguments);
		};
	}
}`

func (h *RodHost) handleNotify(raw gson.JSON) (interface{}, error) {
	msg := gson.NewFrom(raw.Str())

	switch msg.Get("kind").Str() {
	case "scroll":
		h.push(host.Notification{Kind: host.KindScroll, ScrollY: msg.Get("y").Int()})
	case "hidden":
		h.push(host.Notification{Kind: host.KindHidden})
	case "visible":
		h.push(host.Notification{Kind: host.KindVisible})
	case "unload":
		h.push(host.Notification{Kind: host.KindUnload})
	case "cart_submit":
		h.push(host.Notification{Kind: host.KindCartSubmit})
	case "request":
		h.push(host.Notification{Kind: host.KindRequest, RequestURL: msg.Get("url").Str()})
	case "error":
		h.push(host.Notification{Kind: host.KindError, Error: host.ErrorDetail{
			Message:  msg.Get("message").Str(),
			Filename: msg.Get("filename").Str(),
			Line:     msg.Get("lineno").Int(),
			Col:      msg.Get("colno").Int(),
		}})
	}
	return nil, nil
}

// push delivers without blocking; a full buffer drops the signal rather
// than stalling the page binding
func (h *RodHost) push(n host.Notification) {
	select {
	case h.notifications <- n:
	default:
		h.logger.Warn().Msg("Notification buffer full, dropping signal")
	}
}

// URL returns the current navigation URL
func (h *RodHost) URL() string {
	info, err := h.page.Info()
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to read page info")
		return ""
	}
	return info.URL
}

// Referrer returns the navigation referrer
func (h *RodHost) Referrer() string { return h.evalString(`() => document.referrer || ''`) }

// Title returns the page title
func (h *RodHost) Title() string { return h.evalString(`() => document.title || ''`) }

// UserAgent returns the browser's identifying string
func (h *RodHost) UserAgent() string { return h.evalString(`() => navigator.userAgent || ''`) }

// ScreenSize returns the screen dimensions
func (h *RodHost) ScreenSize() (int, int) {
	return h.evalInt(`() => window.screen.width || 0`), h.evalInt(`() => window.screen.height || 0`)
}

// ScrollY returns the current scroll offset
func (h *RodHost) ScrollY() int {
	return h.evalInt(`() => Math.floor(window.scrollY || window.pageYOffset || document.documentElement.scrollTop || 0)`)
}

// DocumentHeight returns the total document height
func (h *RodHost) DocumentHeight() int {
	return h.evalInt(`() => Math.max(
		document.body ? document.body.scrollHeight : 0,
		document.documentElement ? document.documentElement.scrollHeight : 0,
		document.body ? document.body.offsetHeight : 0,
		document.documentElement ? document.documentElement.offsetHeight : 0
	)`)
}

// ViewportHeight returns the viewport height
func (h *RodHost) ViewportHeight() int {
	return h.evalInt(`() => window.innerHeight || document.documentElement.clientHeight || 0`)
}

// Var returns a page-global variable rendered as a string
func (h *RodHost) Var(name string) (string, bool) {
	obj, err := h.page.Eval(`(name) => {
		const v = window[name];
		return v === undefined || v === null ? null : String(v);
	}`, name)
	if err != nil {
		return "", false
	}
	if obj.Value.Val() == nil {
		return "", false
	}
	return obj.Value.Str(), true
}

// Document returns the parsed DOM
func (h *RodHost) Document() (*goquery.Document, error) {
	html, err := h.page.HTML()
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// BodyText returns the rendered page text
func (h *RodHost) BodyText() string {
	return h.evalString(`() => document.body ? document.body.innerText : ''`)
}

// OrderData returns the storefront's structured order object, if it has
// appeared on the page yet
func (h *RodHost) OrderData() (commerce.OrderData, bool) {
	obj, err := h.page.Eval(`() => window.` + orderDataGlobal + ` || null`)
	if err != nil || obj.Value.Val() == nil {
		return commerce.OrderData{}, false
	}

	raw := obj.Value
	data := commerce.OrderData{
		OrderID:     raw.Get("order_id").Str(),
		PayedAmount: looseInt(raw.Get("payed_amount")),
		ShippingFee: looseInt(raw.Get("total_basic_ship_fee")),
	}
	for _, item := range raw.Get("order_product").Arr() {
		data.Products = append(data.Products, commerce.OrderProduct{
			No:    item.Get("product_no").Str(),
			Name:  item.Get("product_name").Str(),
			Price: looseInt(item.Get("product_price")),
		})
	}
	return data, data.OrderID != ""
}

// looseInt tolerates the storefront rendering amounts as strings or
// numbers
func looseInt(j gson.JSON) int {
	switch v := j.Val().(type) {
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Notifications delivers lifecycle and page signals
func (h *RodHost) Notifications() <-chan host.Notification { return h.notifications }

// Detach removes the page binding and ends the notification stream
func (h *RodHost) Detach() {
	if h.stopExpose != nil {
		_ = h.stopExpose()
		h.stopExpose = nil
	}
	close(h.notifications)
}

func (h *RodHost) evalString(js string) string {
	obj, err := h.page.Eval(js)
	if err != nil {
		h.logger.Debug().Err(err).Msg("Page eval failed")
		return ""
	}
	return obj.Value.Str()
}

func (h *RodHost) evalInt(js string) int {
	obj, err := h.page.Eval(js)
	if err != nil {
		h.logger.Debug().Err(err).Msg("Page eval failed")
		return 0
	}
	return obj.Value.Int()
}
