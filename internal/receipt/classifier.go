package receipt

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Kind is the semantic role of one OCR line.
type Kind int

const (
	KindNone Kind = iota
	KindSkip
	KindItem
	KindTax
	KindTip
	KindTotal
	KindSubtotal
)

func (k Kind) String() string {
	switch k {
	case KindSkip:
		return "skip"
	case KindItem:
		return "item"
	case KindTax:
		return "tax"
	case KindTip:
		return "tip"
	case KindTotal:
		return "total"
	case KindSubtotal:
		return "subtotal"
	default:
		return "none"
	}
}

// Item is one purchased row. Price is per unit.
type Item struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// LineTotal is the amount the row contributed to the receipt.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Line is the classification of a single OCR line.
type Line struct {
	Kind    Kind
	Amount  decimal.Decimal
	Percent *decimal.Decimal // tax lines only, when a "NN%" figure is printed
	Item    Item
}

const maxQuantity = 999

// metaRe matches words that only mark metadata when a label form follows,
// as in "Table #4", "Order No. 88" or "Time: 12:41". Bare, they are item names.
const metaRe = `\b(?:table|meja|order|time|jam|date|server|card)\s*(?:no\b\.?|#|:)|\b(?:table|meja)\s+\d`

var (
	priceRe   = regexp.MustCompile(`(?i)(?:\b(?:rp|idr|usd|eur|gbp)\.?\s*|[$€£¥₹]\s*)?\d+(?:[.,]\d+)*`)
	percentRe = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*%`)

	taxRe      = regexp.MustCompile(`\b(?:tax|taxes|vat|gst|hst|pst|pajak|ppn|pb1)\b`)
	tipRe      = regexp.MustCompile(`\b(?:tips?|gratuity|service\s*(?:charge|chg|fee)|svc\s*chg)\b`)
	totalRe    = regexp.MustCompile(`\b(?:grand\s*total|total|amount\s*due|amount|balance\s*due|balance|jumlah|tagihan)\b`)
	subtotalRe = regexp.MustCompile(`\bsub\s*-?\s*total\b|\btotal\s+items?\b|\bjumlah\s+item\b|\bitems?\s*:\s*\d+`)
	skipRe     = regexp.MustCompile(`\b(?:change|cash|tunai|kembali|kembalian|visa|master\s*card|mastercard|amex|maestro|debit|` +
		`thank\s*you|thanks|terima\s*kasih|receipt|struk|tanggal|staff|cashier|kasir|waiter|` +
		`guests?|pax|invoice|discount|disc|diskon|promo|voucher|rounding|pembulatan|` +
		`payment|paid|tel|telp|phone|www|npwp|jl|jln|jalan|street|avenue|ave|road|blvd)\b|` +
		metaRe)
	headerRe = regexp.MustCompile(`\b\d{1,4}[/.-]\d{1,2}[/.-]\d{2,4}\b|\b\d{1,2}:\d{2}(?::\d{2})?\b|` +
		`(?:#|\bno\b\.?|\bref\b|\btrx\b|\binv\b)\s*[:.]?\s*[a-z0-9-]*\d{3,}|\b\d{8,}\b`)

	qtyPrefixRe = regexp.MustCompile(`^(\d{1,3})\s*[xX×]\s*(.+)$`)
	qtySuffixRe = regexp.MustCompile(`^(.+?)\s+[xX×]\s*(\d{1,3})$`)
	qtyBareRe   = regexp.MustCompile(`^(\d{1,3})\s+(.+)$`)
)

// lineInput is what every rule sees: the line, its right-most price and the
// state carried over from earlier lines of the same receipt.
type lineInput struct {
	text         string
	lower        string
	price        decimal.Decimal
	priceStart   int
	subtotalSeen bool
}

type rule struct {
	name  string
	apply func(in *lineInput) (Line, bool)
}

// rules are evaluated top to bottom and the first match wins.
var rules = []rule{
	{name: "tax", apply: classifyTax},
	{name: "tip", apply: keywordRule(tipRe, KindTip)},
	{name: "total", apply: classifyTotal},
	{name: "subtotal", apply: keywordRule(subtotalRe, KindSubtotal)},
	{name: "skip", apply: skipRule(skipRe)},
	{name: "header", apply: skipRule(headerRe)},
	{name: "after-subtotal", apply: classifyAfterSubtotal},
	{name: "item", apply: classifyItem},
}

// RuleOrder returns the names of the classification rules in evaluation order.
func RuleOrder() []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.name
	}
	return names
}

// ClassifyLine decides the role of one OCR line. subtotalSeen reports whether
// an earlier line of the same receipt was a subtotal line.
func ClassifyLine(line string, subtotalSeen bool) Line {
	line = strings.TrimSpace(line)

	start, end, found := locatePrice(line)
	if !found {
		return Line{Kind: KindNone}
	}
	price, ok := ParseAmount(line[start:end])
	if !ok {
		return Line{Kind: KindNone}
	}

	in := &lineInput{
		text:         line,
		lower:        strings.ToLower(line),
		price:        price,
		priceStart:   start,
		subtotalSeen: subtotalSeen,
	}
	for _, r := range rules {
		if result, matched := r.apply(in); matched {
			return result
		}
	}
	return Line{Kind: KindNone}
}

// locatePrice returns the span of the right-most price-looking token.
// Prices are right-aligned on receipts, while leading numbers are usually
// quantities. Figures followed by '%' are rates, not prices.
func locatePrice(line string) (int, int, bool) {
	matches := priceRe.FindAllStringIndex(line, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		start, end := matches[i][0], matches[i][1]
		if strings.HasPrefix(strings.TrimLeft(line[end:], " \t"), "%") {
			continue
		}
		return start, end, true
	}
	return 0, 0, false
}

func classifyTax(in *lineInput) (Line, bool) {
	if !taxRe.MatchString(in.lower) {
		return Line{}, false
	}
	out := Line{Kind: KindTax, Amount: in.price}
	if m := percentRe.FindStringSubmatch(in.text); m != nil {
		if pct, ok := parsePercent(m[1]); ok {
			out.Percent = &pct
		}
	}
	return out, true
}

// classifyTotal ignores "sub total" phrases so that the subtotal rule below
// gets to see them.
func classifyTotal(in *lineInput) (Line, bool) {
	if !totalRe.MatchString(subtotalRe.ReplaceAllString(in.lower, " ")) {
		return Line{}, false
	}
	return Line{Kind: KindTotal, Amount: in.price}, true
}

func keywordRule(re *regexp.Regexp, kind Kind) func(in *lineInput) (Line, bool) {
	return func(in *lineInput) (Line, bool) {
		if !re.MatchString(in.lower) {
			return Line{}, false
		}
		return Line{Kind: kind, Amount: in.price}, true
	}
}

func skipRule(re *regexp.Regexp) func(in *lineInput) (Line, bool) {
	return func(in *lineInput) (Line, bool) {
		if !re.MatchString(in.lower) {
			return Line{}, false
		}
		return Line{Kind: KindSkip}, true
	}
}

// Itemization ends at the subtotal block; what follows is payment detail.
func classifyAfterSubtotal(in *lineInput) (Line, bool) {
	if !in.subtotalSeen {
		return Line{}, false
	}
	return Line{Kind: KindSkip}, true
}

func classifyItem(in *lineInput) (Line, bool) {
	before := strings.TrimSpace(in.text[:in.priceStart])
	if before == "" || skipRe.MatchString(strings.ToLower(before)) {
		return Line{Kind: KindNone}, true
	}

	quantity, name := splitQuantity(before)
	name = cleanName(name)
	if utf8.RuneCountInString(name) < 2 {
		return Line{Kind: KindNone}, true
	}

	return Line{
		Kind:   KindItem,
		Amount: in.price,
		Item: Item{
			Name:     name,
			Price:    in.price.Div(decimal.NewFromInt(int64(quantity))),
			Quantity: quantity,
		},
	}, true
}

// splitQuantity recognises "2x Name", "Name x 2" and "2 Name".
func splitQuantity(text string) (int, string) {
	if m := qtyPrefixRe.FindStringSubmatch(text); m != nil {
		if qty, ok := quantity(m[1]); ok {
			return qty, m[2]
		}
	}
	if m := qtySuffixRe.FindStringSubmatch(text); m != nil {
		if qty, ok := quantity(m[2]); ok {
			return qty, m[1]
		}
	}
	if m := qtyBareRe.FindStringSubmatch(text); m != nil {
		if qty, ok := quantity(m[1]); ok {
			return qty, m[2]
		}
	}
	return 1, text
}

func quantity(raw string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxQuantity {
		return 0, false
	}
	return n, true
}

func cleanName(name string) string {
	name = strings.Trim(name, " \t.:;,-=*@#|$€£¥₹")
	return strings.Join(strings.Fields(name), " ")
}
