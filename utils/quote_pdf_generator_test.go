package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"1234.5", "1,234.50"},
		{"1234567.891", "1,234,567.89"},
		{"-9876.54", "-9,876.54"},
		{"999", "999.00"},
	}

	for _, tc := range cases {
		d, err := decimal.NewFromString(tc.in)
		if err != nil {
			t.Fatalf("bad test input %q: %v", tc.in, err)
		}
		if got := formatCurrency(d); got != tc.want {
			t.Errorf("formatCurrency(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
