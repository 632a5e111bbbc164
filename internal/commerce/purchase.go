package commerce

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/moadamda/tracker/internal/event"
)

// Rendered-text patterns for the order-confirmation page. Korean labels
// are the storefront's fixed copy: order number, payment amount, ordered
// product.
var (
	orderNumberPattern   = regexp.MustCompile(`주문번호\s*([0-9-]+)`)
	paymentAmountPattern = regexp.MustCompile(`결제금액\s*([\d,]+)원`)
	productNamePattern   = regexp.MustCompile(`(?s)주문상품.*?\[([^\]]+)\]`)
)

// TrackPurchase polls for the storefront's structured order object and
// emits a purchase event once it appears. If the attempt budget runs
// out, the rendered page text is pattern-matched instead; if even the
// order number cannot be found there, the purchase is logged as
// unrecoverable and nothing is emitted.
func (e *Extractor) TrackPurchase(page OrderPage) {
	e.logger.Info().
		Int("max_attempts", e.cfg.PurchasePollMaxAttempts).
		Msg("Starting purchase tracking")

	e.mu.Lock()
	e.pollAttempts = 0
	e.pollCancel = e.sched.Every(e.cfg.PurchasePollInterval(), func() {
		e.pollOrderData(page)
	})
	e.mu.Unlock()
}

func (e *Extractor) pollOrderData(page OrderPage) {
	e.mu.Lock()
	e.pollAttempts++
	attempts := e.pollAttempts
	e.mu.Unlock()

	if data, ok := page.OrderData(); ok && data.OrderID != "" {
		e.stopPolling()
		e.logger.Info().Int("attempts", attempts).Msg("Structured order data found")
		e.emitPurchase(data, page.URL())
		return
	}

	if attempts >= e.cfg.PurchasePollMaxAttempts {
		e.stopPolling()
		e.logger.Warn().Msg("Structured order data never appeared, trying text fallback")
		e.fallbackPurchase(page)
	}
}

func (e *Extractor) stopPolling() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pollCancel != nil {
		e.pollCancel()
		e.pollCancel = nil
	}
}

func (e *Extractor) emitPurchase(data OrderData, pageURL string) {
	ev := e.build(event.TypePurchase)
	ev["order_id"] = data.OrderID
	ev["total_amount"] = data.PayedAmount
	ev["final_payment"] = data.PayedAmount
	ev["discount_amount"] = 0
	ev["mileage_used"] = 0
	ev["shipping_fee"] = data.ShippingFee
	ev["url"] = pageURL

	if len(data.Products) > 0 {
		first := data.Products[0]
		ev["product_count"] = len(data.Products)
		ev["product_id"] = first.No
		ev["product_name"] = first.Name
		ev["product_price"] = first.Price
	} else {
		ev["product_count"] = 1
		ev["product_id"] = ""
		ev["product_name"] = ""
		ev["product_price"] = 0
	}

	e.emit(ev)
	e.logger.Info().Str("order_id", data.OrderID).Msg("Purchase event sent")
}

func (e *Extractor) fallbackPurchase(page OrderPage) {
	parsed, ok := ParseOrderFromText(page.BodyText())
	if !ok {
		e.logger.Error().Msg("Purchase tracking failed: no order data available")
		return
	}

	ev := e.build(event.TypePurchase)
	ev["order_id"] = parsed.OrderID
	ev["total_amount"] = parsed.PayedAmount
	ev["final_payment"] = parsed.PayedAmount
	ev["product_count"] = 1
	ev["product_id"] = ""
	ev["product_name"] = parsed.ProductName
	ev["product_price"] = parsed.PayedAmount
	ev["discount_amount"] = 0
	ev["mileage_used"] = 0
	ev["shipping_fee"] = 0
	ev["url"] = page.URL()

	e.emit(ev)
	e.logger.Info().Str("order_id", parsed.OrderID).Msg("Purchase event sent (text fallback)")
}

// ParsedOrder is the result of the rendered-text fallback
type ParsedOrder struct {
	OrderID     string
	PayedAmount int
	ProductName string
}

// ParseOrderFromText pattern-matches the order-confirmation copy for an
// order number, payment amount and product name. The order number is
// mandatory; the rest is best-effort.
func ParseOrderFromText(bodyText string) (ParsedOrder, bool) {
	match := orderNumberPattern.FindStringSubmatch(bodyText)
	if match == nil {
		return ParsedOrder{}, false
	}
	parsed := ParsedOrder{OrderID: match[1]}

	if m := paymentAmountPattern.FindStringSubmatch(bodyText); m != nil {
		digits := strings.ReplaceAll(m[1], ",", "")
		if amount, err := strconv.Atoi(digits); err == nil {
			parsed.PayedAmount = amount
		}
	}

	if m := productNamePattern.FindStringSubmatch(bodyText); m != nil {
		parsed.ProductName = m[1]
	}

	return parsed, true
}
