// Package commerce observes page-specific signals to emit cart and
// purchase events, with a prioritized chain of extraction sources and a
// text-pattern fallback for the order-confirmation page.
package commerce

import "github.com/PuerkitoBio/goquery"

// Page is the slice of the host surface the extractors consume. Every
// signal is best-effort: absence degrades gracefully, never fatally.
type Page interface {
	// URL returns the current navigation URL
	URL() string
	// Var returns a page-global variable rendered as a string
	Var(name string) (string, bool)
	// Document returns the parsed DOM
	Document() (*goquery.Document, error)
	// BodyText returns the rendered page text
	BodyText() string
}

// OrderPage additionally exposes the storefront's structured order-data
// object when it has appeared
type OrderPage interface {
	Page
	// OrderData returns the structured order object, if present yet
	OrderData() (OrderData, bool)
}

// OrderProduct is one line item of a confirmed order
type OrderProduct struct {
	No    string
	Name  string
	Price int
}

// OrderData is the storefront's structured order-confirmation object
type OrderData struct {
	OrderID     string
	PayedAmount int
	ShippingFee int
	Products    []OrderProduct
}
