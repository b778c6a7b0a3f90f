package receipt

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRuleOrder(t *testing.T) {
	want := []string{"tax", "tip", "total", "subtotal", "skip", "header", "after-subtotal", "item"}
	if got := RuleOrder(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		name         string
		line         string
		subtotalSeen bool
		wantKind     Kind
		wantAmount   string
	}{
		{name: "tax keyword", line: "Tax 5.00", wantKind: KindTax, wantAmount: "5.00"},
		{name: "indonesian tax", line: "PB1 10% 5.800", wantKind: KindTax, wantAmount: "5800"},
		{name: "tip", line: "Tip 3.00", wantKind: KindTip, wantAmount: "3.00"},
		{name: "service charge", line: "Service Charge 2.50", wantKind: KindTip, wantAmount: "2.50"},
		{name: "total", line: "TOTAL 29.75", wantKind: KindTotal, wantAmount: "29.75"},
		{name: "grand total", line: "Grand Total Rp 63.800", wantKind: KindTotal, wantAmount: "63800"},
		{name: "subtotal", line: "SUBTOTAL 45.00", wantKind: KindSubtotal, wantAmount: "45.00"},
		{name: "spaced subtotal", line: "Sub Total 58.000", wantKind: KindSubtotal, wantAmount: "58000"},
		{name: "total tax is tax", line: "Total Tax 4.00", wantKind: KindTax, wantAmount: "4.00"},
		{name: "payment line", line: "VISA **** 4242 31.71", wantKind: KindSkip},
		{name: "change", line: "Kembalian 36.200", wantKind: KindSkip},
		{name: "date header", line: "12/05/2024 19:21", wantKind: KindSkip},
		{name: "reference header", line: "No. 000123 10.00", wantKind: KindSkip},
		{name: "item after subtotal", line: "Cookie 3.00", subtotalSeen: true, wantKind: KindSkip},
		{name: "item", line: "Cheeseburger 12.99", wantKind: KindItem, wantAmount: "12.99"},
		{name: "gift card item", line: "Gift Card 25.00", wantKind: KindItem, wantAmount: "25.00"},
		{name: "greeting card item", line: "Birthday Card 4.50", wantKind: KindItem, wantAmount: "4.50"},
		{name: "side order item", line: "Side Order Fries 3.00", wantKind: KindItem, wantAmount: "3.00"},
		{name: "table salt item", line: "Table Salt 2.00", wantKind: KindItem, wantAmount: "2.00"},
		{name: "time out item", line: "Time Out Bar 2.00", wantKind: KindItem, wantAmount: "2.00"},
		{name: "strawberry jam item", line: "Strawberry Jam 3.25", wantKind: KindItem, wantAmount: "3.25"},
		{name: "table number", line: "Table #12 10.00", wantKind: KindSkip},
		{name: "order number", line: "Order No. 88 12.00", wantKind: KindSkip},
		{name: "server label", line: "Server: Anna 10.00", wantKind: KindSkip},
		{name: "time label", line: "Time: 12.41", wantKind: KindSkip},
		{name: "card number", line: "Card No 5521 31.71", wantKind: KindSkip},
		{name: "no price", line: "THANK YOU", wantKind: KindNone},
		{name: "single digit price", line: "Table 7", wantKind: KindNone},
		{name: "price only", line: "12.50", wantKind: KindNone},
		{name: "short name", line: "A 12.50", wantKind: KindNone},
		{name: "blank", line: "   ", wantKind: KindNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyLine(tt.line, tt.subtotalSeen)
			if got.Kind != tt.wantKind {
				t.Fatalf("ClassifyLine(%q) kind = %s, want %s", tt.line, got.Kind, tt.wantKind)
			}
			if tt.wantAmount == "" {
				return
			}
			if want := decimal.RequireFromString(tt.wantAmount); !got.Amount.Equal(want) {
				t.Errorf("ClassifyLine(%q) amount = %s, want %s", tt.line, got.Amount, want)
			}
		})
	}
}

func TestClassifyLineTaxPercent(t *testing.T) {
	got := ClassifyLine("Tax 10% 5.00", false)
	if got.Kind != KindTax {
		t.Fatalf("expected tax line, got %s", got.Kind)
	}
	if !got.Amount.Equal(decimal.RequireFromString("5.00")) {
		t.Errorf("expected amount 5.00, got %s", got.Amount)
	}
	if got.Percent == nil || !got.Percent.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected percent 10, got %v", got.Percent)
	}

	noPct := ClassifyLine("VAT 1.20", false)
	if noPct.Percent != nil {
		t.Errorf("expected no percent, got %s", noPct.Percent)
	}
}

func TestClassifyLineQuantity(t *testing.T) {
	tests := []struct {
		line      string
		wantName  string
		wantQty   int
		wantPrice string
	}{
		{line: "2x Burger 9.00", wantName: "Burger", wantQty: 2, wantPrice: "4.5"},
		{line: "2 x Fries 7.00", wantName: "Fries", wantQty: 2, wantPrice: "3.5"},
		{line: "Coke x 2 5.00", wantName: "Coke", wantQty: 2, wantPrice: "2.5"},
		{line: "3 Nasi Goreng 75.000", wantName: "Nasi Goreng", wantQty: 3, wantPrice: "25000"},
		{line: "Latte   -  4.50", wantName: "Latte", wantQty: 1, wantPrice: "4.5"},
		{line: "1000 Island Dressing 3.00", wantName: "1000 Island Dressing", wantQty: 1, wantPrice: "3"},
		{line: "0x Water 2.00", wantName: "0x Water", wantQty: 1, wantPrice: "2"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := ClassifyLine(tt.line, false)
			if got.Kind != KindItem {
				t.Fatalf("expected item, got %s", got.Kind)
			}
			if got.Item.Name != tt.wantName {
				t.Errorf("name = %q, want %q", got.Item.Name, tt.wantName)
			}
			if got.Item.Quantity != tt.wantQty {
				t.Errorf("quantity = %d, want %d", got.Item.Quantity, tt.wantQty)
			}
			if want := decimal.RequireFromString(tt.wantPrice); !got.Item.Price.Equal(want) {
				t.Errorf("unit price = %s, want %s", got.Item.Price, want)
			}
		})
	}
}
