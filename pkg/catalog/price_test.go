package catalog

import "testing"

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		minor    int
		currency string
		expected string
	}{
		{69900, "RUB", "699 ₽"},
		{199900, "rub", "1999 ₽"},
		{69950, "RUB", "699 ₽"},
		{0, "RUB", "0 ₽"},
		{1999, "USD", "19 $"},
		{500, "", "5 ₽"},
		{1000, "PLN", "10 PLN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatAmount(tt.minor, tt.currency); got != tt.expected {
				t.Errorf("FormatAmount(%d, %q) = %q, want %q", tt.minor, tt.currency, got, tt.expected)
			}
		})
	}
}

func TestPriceDisplay(t *testing.T) {
	final := 124900
	tests := []struct {
		name     string
		price    Price
		expected string
	}{
		{"free", Price{IsFree: true}, "Free"},
		{"unknown", Price{}, ""},
		{"priced", Price{Final: &final, Currency: "RUB"}, "1249 ₽"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.price.Display(); got != tt.expected {
				t.Errorf("Display() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestPriceRangeContains(t *testing.T) {
	r := PriceRange{Min: 500, Max: 1500}
	for v, want := range map[int]bool{499: false, 500: true, 1000: true, 1500: true, 1501: false} {
		if got := r.Contains(v); got != want {
			t.Errorf("Contains(%d) = %v, want %v", v, got, want)
		}
	}
}
