// Package hosttest provides a scriptable Host for tests.
package hosttest

import (
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/moadamda/tracker/internal/commerce"
	"github.com/moadamda/tracker/internal/host"
)

// FakeHost is a Host whose surface is plain fields and whose
// notifications are emitted by the test
type FakeHost struct {
	mu sync.Mutex

	PageURL       string
	PageReferrer  string
	PageTitle     string
	Agent         string
	ScreenWidth   int
	ScreenHeight  int
	Scroll        int
	DocHeight     int
	ViewHeight    int
	Vars          map[string]string
	HTML          string
	Body          string
	Order         commerce.OrderData
	OrderPresent  bool
	notifications chan host.Notification
}

// New creates a fake host with an open notification channel
func New() *FakeHost {
	return &FakeHost{
		Vars:          make(map[string]string),
		notifications: make(chan host.Notification, 64),
	}
}

// URL returns the configured navigation URL
func (f *FakeHost) URL() string { f.mu.Lock(); defer f.mu.Unlock(); return f.PageURL }

// Referrer returns the configured referrer
func (f *FakeHost) Referrer() string { f.mu.Lock(); defer f.mu.Unlock(); return f.PageReferrer }

// Title returns the configured title
func (f *FakeHost) Title() string { f.mu.Lock(); defer f.mu.Unlock(); return f.PageTitle }

// UserAgent returns the configured user agent
func (f *FakeHost) UserAgent() string { f.mu.Lock(); defer f.mu.Unlock(); return f.Agent }

// ScreenSize returns the configured screen dimensions
func (f *FakeHost) ScreenSize() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ScreenWidth, f.ScreenHeight
}

// ScrollY returns the configured scroll offset
func (f *FakeHost) ScrollY() int { f.mu.Lock(); defer f.mu.Unlock(); return f.Scroll }

// DocumentHeight returns the configured document height
func (f *FakeHost) DocumentHeight() int { f.mu.Lock(); defer f.mu.Unlock(); return f.DocHeight }

// ViewportHeight returns the configured viewport height
func (f *FakeHost) ViewportHeight() int { f.mu.Lock(); defer f.mu.Unlock(); return f.ViewHeight }

// Var returns a configured page variable
func (f *FakeHost) Var(name string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.Vars[name]
	return v, ok
}

// Document parses the configured HTML
func (f *FakeHost) Document() (*goquery.Document, error) {
	f.mu.Lock()
	html := f.HTML
	f.mu.Unlock()
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// BodyText returns the configured body text
func (f *FakeHost) BodyText() string { f.mu.Lock(); defer f.mu.Unlock(); return f.Body }

// OrderData returns the configured order object
func (f *FakeHost) OrderData() (commerce.OrderData, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Order, f.OrderPresent
}

// SetOrderData makes the structured order object appear
func (f *FakeHost) SetOrderData(data commerce.OrderData) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Order = data
	f.OrderPresent = true
}

// Notifications returns the notification channel
func (f *FakeHost) Notifications() <-chan host.Notification { return f.notifications }

// Emit delivers a notification to the agent
func (f *FakeHost) Emit(n host.Notification) { f.notifications <- n }

// EmitScroll delivers a scroll notification
func (f *FakeHost) EmitScroll(y int) { f.Emit(host.Notification{Kind: host.KindScroll, ScrollY: y}) }

// EmitHidden delivers a visibility-lost notification
func (f *FakeHost) EmitHidden() { f.Emit(host.Notification{Kind: host.KindHidden}) }

// EmitVisible delivers a visibility-regained notification
func (f *FakeHost) EmitVisible() { f.Emit(host.Notification{Kind: host.KindVisible}) }

// EmitUnload delivers an unload notification
func (f *FakeHost) EmitUnload() { f.Emit(host.Notification{Kind: host.KindUnload}) }

// EmitCartSubmit delivers a cart submission notification
func (f *FakeHost) EmitCartSubmit() { f.Emit(host.Notification{Kind: host.KindCartSubmit}) }

// EmitRequest delivers a network request notification
func (f *FakeHost) EmitRequest(url string) {
	f.Emit(host.Notification{Kind: host.KindRequest, RequestURL: url})
}

// EmitError delivers a host runtime error notification
func (f *FakeHost) EmitError(detail host.ErrorDetail) {
	f.Emit(host.Notification{Kind: host.KindError, Error: detail})
}

// Close ends the notification stream
func (f *FakeHost) Close() { close(f.notifications) }
