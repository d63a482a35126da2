package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// currencySymbols maps ISO 4217 codes to display symbols.
var currencySymbols = map[string]string{
	"RUB": "₽",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"KZT": "₸",
	"UAH": "₴",
}

// DefaultCurrency is assumed when a price carries no currency code.
const DefaultCurrency = "RUB"

// FormatAmount renders an amount in minor units as whole major units
// followed by the currency symbol, e.g. 69900 RUB -> "699 ₽".
// Fractional major units are truncated as the storefront does.
func FormatAmount(minor int, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	amount := decimal.New(int64(minor), -2).Truncate(0)

	symbol, ok := currencySymbols[strings.ToUpper(currency)]
	if !ok {
		symbol = strings.ToUpper(currency)
	}
	return amount.String() + " " + symbol
}

// Display renders the price for a card: "Free", the final amount, or an
// empty string when the price is unknown.
func (p Price) Display() string {
	switch {
	case p.IsFree:
		return "Free"
	case p.Final == nil:
		return ""
	default:
		return FormatAmount(*p.Final, p.Currency)
	}
}
