package receipt

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrEmptyText is returned when there is nothing to parse.
var ErrEmptyText = errors.New("receipt: empty text")

var hundred = decimal.NewFromInt(100)

// ParsedReceipt is the structured form of a receipt's OCR text.
type ParsedReceipt struct {
	Items      []Item           `json:"items"`
	Subtotal   decimal.Decimal  `json:"subtotal"`
	Tax        decimal.Decimal  `json:"tax"`
	TaxPercent *decimal.Decimal `json:"taxPercent,omitempty"`
	Tip        decimal.Decimal  `json:"tip"`
	Total      decimal.Decimal  `json:"total"`
}

// ItemsTotal sums price × quantity over all items.
func (r ParsedReceipt) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range r.Items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

// assembly is the fold accumulator for ParseText.
type assembly struct {
	receipt      ParsedReceipt
	subtotalSeen bool
}

func (a assembly) fold(line string) assembly {
	l := ClassifyLine(line, a.subtotalSeen)
	switch l.Kind {
	case KindItem:
		a.receipt.Items = append(a.receipt.Items, l.Item)
	case KindTax:
		a.receipt.Tax = l.Amount
		if l.Percent != nil {
			a.receipt.TaxPercent = l.Percent
		}
	case KindTip:
		a.receipt.Tip = l.Amount
	case KindTotal:
		a.receipt.Total = l.Amount
	case KindSubtotal:
		a.receipt.Subtotal = l.Amount
		a.subtotalSeen = true
	}
	return a
}

func (a assembly) finish() ParsedReceipt {
	r := a.receipt
	if r.TaxPercent == nil && r.Subtotal.IsPositive() && !r.Tax.IsZero() {
		pct := r.Tax.Div(r.Subtotal).Mul(hundred).Round(0)
		r.TaxPercent = &pct
	}
	if r.Total.IsZero() && len(r.Items) > 0 {
		r.Total = r.ItemsTotal().Add(r.Tax).Add(r.Tip).Round(2)
	}
	return r
}

// ParseText turns raw multi-line OCR text into a ParsedReceipt. Lines are
// classified in order; tax, tip, total and subtotal keep the last value read.
func ParseText(text string) (ParsedReceipt, error) {
	if strings.TrimSpace(text) == "" {
		return ParsedReceipt{}, ErrEmptyText
	}

	acc := assembly{receipt: ParsedReceipt{Items: []Item{}}}
	for _, line := range strings.Split(text, "\n") {
		acc = acc.fold(line)
	}
	return acc.finish(), nil
}
