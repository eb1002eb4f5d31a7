package domain

import "strings"

// Currency represents an ISO 4217 currency code handled by the valuation engine
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyILS Currency = "ILS"
)

// PivotCurrency is the currency every cross-currency conversion is routed through.
// All exchange rates are expressed as "1 unit of X = N ILS".
const PivotCurrency = CurrencyILS

// SupportedCurrencies lists the currencies with a rate in an ExchangeRateSet
var SupportedCurrencies = []Currency{CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyILS}

// ParseCurrency normalizes a currency code (trimmed, upper-cased)
// The second return value reports whether the code is one of SupportedCurrencies.
// Unsupported codes are still returned normalized so callers can apply the fallback policy.
func ParseCurrency(code string) (Currency, bool) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	return c, c.IsSupported()
}

// IsSupported reports whether the currency has a rate in an ExchangeRateSet
func (c Currency) IsSupported() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyILS:
		return true
	}
	return false
}

// Equal compares two currency codes case-insensitively
func (c Currency) Equal(other Currency) bool {
	return strings.EqualFold(strings.TrimSpace(string(c)), strings.TrimSpace(string(other)))
}

func (c Currency) String() string { return string(c) }
