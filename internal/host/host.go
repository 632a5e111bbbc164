// Package host abstracts the surface the tracker consumes from the
// page it is embedded in. Production uses the rodhost adapter driving a
// live browser page; tests use the fake in hosttest.
package host

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/moadamda/tracker/internal/commerce"
)

// Kind identifies a host notification
type Kind int

const (
	// KindScroll reports a new scroll position
	KindScroll Kind = iota
	// KindHidden reports loss of foreground visibility
	KindHidden
	// KindVisible reports regained foreground visibility
	KindVisible
	// KindUnload reports an unload signal
	KindUnload
	// KindCartSubmit reports the page's native cart submission firing
	KindCartSubmit
	// KindRequest reports an outgoing network call from the page
	KindRequest
	// KindError reports a host runtime error
	KindError
)

// ErrorDetail describes a host runtime error
type ErrorDetail struct {
	Message  string
	Filename string
	Line     int
	Col      int
}

// Notification is one lifecycle or page signal from the host
type Notification struct {
	Kind       Kind
	ScrollY    int
	RequestURL string
	Error      ErrorDetail
}

// Host is the full surface the agent consumes. Every method is
// best-effort: a host that cannot answer returns a zero value, and the
// agent degrades gracefully. Host satisfies commerce.OrderPage.
type Host interface {
	// URL returns the current navigation URL
	URL() string
	// Referrer returns the navigation referrer
	Referrer() string
	// Title returns the page title
	Title() string
	// UserAgent returns the execution context's identifying string
	UserAgent() string
	// ScreenSize returns the screen dimensions
	ScreenSize() (width, height int)
	// ScrollY returns the current scroll offset
	ScrollY() int
	// DocumentHeight returns the total document height
	DocumentHeight() int
	// ViewportHeight returns the viewport height
	ViewportHeight() int
	// Var returns a page-global variable rendered as a string
	Var(name string) (string, bool)
	// Document returns the parsed DOM
	Document() (*goquery.Document, error)
	// BodyText returns the rendered page text
	BodyText() string
	// OrderData returns the storefront's structured order object
	OrderData() (commerce.OrderData, bool)
	// Notifications delivers lifecycle and page signals until the host
	// context ends
	Notifications() <-chan Notification
}
