package presenter

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-valuation/internal/domain"
)

const (
	defaultFraction = 2
	pricePlaces     = 4
	percentPlaces   = 2
)

// fraction returns the number of minor unit digits of a currency, 2 when go-money does not know it
func fraction(currency domain.Currency) int32 {
	if cur := money.GetCurrency(currency.String()); cur != nil {
		return int32(cur.Fraction)
	}
	return defaultFraction
}

// Amount rounds a monetary amount to the minor unit of its currency
func Amount(amount decimal.Decimal, currency domain.Currency) string {
	return amount.StringFixed(fraction(currency))
}

// Price rounds a unit price; prices keep more digits than amounts so sub-unit listings stay exact
func Price(price decimal.Decimal) string {
	return price.Round(pricePlaces).String()
}

// Percent rounds a percentage for display
func Percent(p decimal.Decimal) string {
	return p.StringFixed(percentPlaces)
}

// Display formats an amount with the currency symbol, e.g. "$1,234.50" or "₪6,300.00"
// Unknown currencies fall back to "<amount> <code>".
func Display(amount decimal.Decimal, currency domain.Currency) string {
	cur := money.GetCurrency(currency.String())
	if cur == nil {
		return amount.StringFixed(defaultFraction) + " " + currency.String()
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}
