package commerce

import (
	"regexp"
	"strconv"
	"strings"
)

// ProductData is the product information a source can contribute
type ProductData struct {
	ID    string
	Name  string
	Price int
}

func (pd ProductData) complete() bool {
	return pd.ID != "" && pd.Name != "" && pd.Price > 0
}

// ProductSource extracts product data from one place on the page.
// Sources are tried in priority order; each fills only the fields it
// can see, so a partial hit still contributes.
type ProductSource interface {
	Name() string
	Extract(page Page) (ProductData, bool)
}

// defaultSources is the priority order: page globals, then DOM input
// fields, then visible DOM text, then the URL itself
func defaultSources() []ProductSource {
	return []ProductSource{
		&GlobalVarSource{},
		&InputFieldSource{},
		&SelectorTextSource{},
		&URLPatternSource{},
	}
}

// GlobalVarSource reads the storefront's product page globals
type GlobalVarSource struct{}

// Name identifies the source in logs
func (s *GlobalVarSource) Name() string { return "page_globals" }

// Extract reads product globals exposed by the storefront template
func (s *GlobalVarSource) Extract(page Page) (ProductData, bool) {
	var data ProductData
	if v, ok := page.Var("iProductNo"); ok {
		data.ID = v
	}
	if v, ok := page.Var("product_name"); ok {
		data.Name = v
	}
	if v, ok := page.Var("product_sale_price"); ok {
		data.Price = parsePrice(v)
	} else if v, ok := page.Var("product_price"); ok {
		data.Price = parsePrice(v)
	}
	return data, data.ID != "" || data.Name != "" || data.Price > 0
}

// InputFieldSource reads the hidden inputs some storefront skins render
type InputFieldSource struct{}

// Name identifies the source in logs
func (s *InputFieldSource) Name() string { return "dom_inputs" }

// Extract reads hidden product input fields from the DOM
func (s *InputFieldSource) Extract(page Page) (ProductData, bool) {
	doc, err := page.Document()
	if err != nil {
		return ProductData{}, false
	}

	var data ProductData
	if v, ok := doc.Find("#ifdo_detail_product_no").Attr("value"); ok {
		data.ID = v
	}
	if v, ok := doc.Find("#ifdo_detail_product_name").Attr("value"); ok {
		data.Name = v
	}
	if v, ok := doc.Find("#ifdo_detail_product_price").Attr("value"); ok {
		data.Price = parsePrice(v)
	}
	return data, data.ID != "" || data.Name != "" || data.Price > 0
}

// SelectorTextSource reads visible product detail elements
type SelectorTextSource struct{}

// Name identifies the source in logs
func (s *SelectorTextSource) Name() string { return "dom_text" }

// Extract reads the product name and price from visible detail elements
func (s *SelectorTextSource) Extract(page Page) (ProductData, bool) {
	doc, err := page.Document()
	if err != nil {
		return ProductData{}, false
	}

	var data ProductData
	if name := strings.TrimSpace(doc.Find(".prdDetailInfoSubject, h3.tit_prd").First().Text()); name != "" {
		data.Name = name
	}
	if price := doc.Find(".prdDetailInfoPrice strong, .price strong").First().Text(); price != "" {
		data.Price = parsePrice(price)
	}
	return data, data.Name != "" || data.Price > 0
}

var productNoPattern = regexp.MustCompile(`product_no=(\d+)`)

// URLPatternSource reads the product identifier from the URL
type URLPatternSource struct{}

// Name identifies the source in logs
func (s *URLPatternSource) Name() string { return "url_pattern" }

// Extract reads the product identifier from the navigation URL
func (s *URLPatternSource) Extract(page Page) (ProductData, bool) {
	match := productNoPattern.FindStringSubmatch(page.URL())
	if match == nil {
		return ProductData{}, false
	}
	return ProductData{ID: match[1]}, true
}

var nonDigitPattern = regexp.MustCompile(`[^0-9]`)

// parsePrice extracts an integer amount from a rendered price string
func parsePrice(s string) int {
	digits := nonDigitPattern.ReplaceAllString(s, "")
	if digits == "" {
		return 0
	}
	price, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return price
}
