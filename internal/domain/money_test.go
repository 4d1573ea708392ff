package domain

import "testing"

func TestMoneyFormat(t *testing.T) {
	cases := []struct {
		name string
		m    Money
		want string
	}{
		{"usd grouping and cents", Money{Amount: 123456, Currency: "USD"}, "USD 1,234.56"},
		{"usd small", Money{Amount: 50, Currency: "USD"}, "USD 0.50"},
		{"jpy no fraction digits", Money{Amount: 500000, Currency: "JPY"}, "JPY 500,000"},
		{"unknown code falls back", Money{Amount: 1500, Currency: "POINTS"}, "POINTS 1500"},
		{"empty code falls back", Money{Amount: 7, Currency: ""}, " 7"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.m.Format(); got != tc.want {
				t.Fatalf("Format(%+v) = %q, want %q", tc.m, got, tc.want)
			}
		})
	}
}
