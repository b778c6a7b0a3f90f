package receipt

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{name: "comma thousands without cents", raw: "48,637", want: "48637", wantOK: true},
		{name: "dot thousands without cents", raw: "22.739", want: "22739", wantOK: true},
		{name: "dot decimal", raw: "12.34", want: "12.34", wantOK: true},
		{name: "comma decimal", raw: "10,50", want: "10.5", wantOK: true},
		{name: "us grouping", raw: "1,234.56", want: "1234.56", wantOK: true},
		{name: "eu grouping", raw: "1.234,56", want: "1234.56", wantOK: true},
		{name: "multiple groups", raw: "1.234.567", want: "1234567", wantOK: true},
		{name: "currency prefix", raw: "Rp 48.637", want: "48637", wantOK: true},
		{name: "currency prefix with dot", raw: "Rp. 15.000", want: "15000", wantOK: true},
		{name: "dollar glyph", raw: "$9.99", want: "9.99", wantOK: true},
		{name: "plain integer", raw: "45", want: "45", wantOK: true},
		{name: "trailing separator", raw: "12.34.", want: "12.34", wantOK: true},
		{name: "single digit rejected", raw: ":3", wantOK: false},
		{name: "lone digit rejected", raw: "7", wantOK: false},
		{name: "zero rejected", raw: "0.00", wantOK: false},
		{name: "no digits", raw: "Rp", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("ParseAmount(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			want := decimal.RequireFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.raw, got, want)
			}
		})
	}
}
