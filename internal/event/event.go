// Package event defines the wire model shared by every producer in the
// tracker and the batch envelope the collector accepts.
package event

import (
	"fmt"
	"strconv"
	"time"
)

// Event types accepted by the collector
const (
	TypePageview        = "pageview"
	TypeAddToCart       = "add_to_cart"
	TypePurchase        = "purchase"
	TypeSessionEnd      = "session_end"
	TypeHeartbeat       = "heartbeat"
	TypeCheckoutAttempt = "checkout_attempt"
	TypeCouponSelect    = "coupon_select"
	TypeScrollDepth     = "scroll_depth"
	TypeTrackerError    = "tracker_error"
)

// Event is one telemetry record. Fields vary by type, so the record is
// an open mapping; the common fields are set by the constructors.
type Event map[string]any

// New creates an event with an RFC3339 timestamp, the format the
// collector expects for page-level events.
func New(eventType, visitorID, sessionID string, now time.Time) Event {
	return Event{
		"type":       eventType,
		"visitor_id": visitorID,
		"session_id": sessionID,
		"timestamp":  now.UTC().Format(time.RFC3339),
	}
}

// NewEpoch creates an event with an epoch-milliseconds timestamp.
// Heartbeat and session-end records carry this format; the mixed
// formats are part of the collector's wire contract.
func NewEpoch(eventType, visitorID, sessionID string, now time.Time) Event {
	return Event{
		"type":       eventType,
		"visitor_id": visitorID,
		"session_id": sessionID,
		"timestamp":  now.UnixMilli(),
	}
}

// Type returns the event type
func (e Event) Type() string {
	t, _ := e["type"].(string)
	return t
}

// TimestampKey returns the timestamp rendered as a comparable string,
// used with the type for duplicate suppression in the retry queue.
// Numeric timestamps are formatted without an exponent so an event
// compares equal to its own copy after a JSON round trip, which turns
// the int64 from NewEpoch into a float64.
func (e Event) TimestampKey() string {
	switch ts := e["timestamp"].(type) {
	case int64:
		return strconv.FormatInt(ts, 10)
	case float64:
		return strconv.FormatFloat(ts, 'f', -1, 64)
	default:
		return fmt.Sprint(ts)
	}
}

// Batch is the envelope posted to the collector
type Batch struct {
	SiteID string  `json:"site_id"`
	Events []Event `json:"events"`
}

// NewBatch wraps events in a collector envelope
func NewBatch(siteID string, events ...Event) Batch {
	return Batch{SiteID: siteID, Events: events}
}
