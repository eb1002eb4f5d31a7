package valuation

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-valuation/internal/domain"
	"github.com/simaogato/wealthflow-valuation/internal/usecase/conversion"
)

// percentPrecision is the number of decimal places kept on percentage divisions
const percentPrecision = 8

var hundred = decimal.NewFromInt(100)

// ValuateHolding values one holding in its account's currency
// Logic:
//  1. CostBasis = Quantity x AvgCostBasis (AvgCostBasis is already in the account currency, never converted)
//  2. An error marker quote values the holding at price 0, so GainLoss = -CostBasis until a price arrives
//  3. A quote in another currency is converted; the as-quoted price/currency are kept as Original*
//  4. CurrentValue = Quantity x CurrentPrice, GainLoss = CurrentValue - CostBasis
//     A converted value is computed from Quantity x quoted price so the pivot division runs once
//
// Returned warnings describe degraded data (missing price, skipped or fallback conversion).
func ValuateHolding(h domain.Holding, qr domain.QuoteResult, accountCurrency domain.Currency, rates *domain.ExchangeRateSet) (domain.HoldingValue, []string) {
	var warnings []string
	var convertedValue *decimal.Decimal

	hv := domain.HoldingValue{
		Holding:   h,
		CostBasis: h.Quantity.Mul(h.AvgCostBasis),
	}

	if qr.IsError() {
		hv.CurrentPrice = decimal.Zero
		hv.PriceUnavailable = true
		hv.PriceError = qr.ErrorReason
		warnings = append(warnings, fmt.Sprintf("%s: price unavailable (%s), valued at 0", domain.NormalizeSymbol(h.Symbol), qr.ErrorReason))
	} else {
		quote := qr.Quote
		hv.CurrentPrice = quote.Price
		hv.QuotedAt = quote.Timestamp
		hv.FromCache = quote.FromCache

		if !quote.Currency.Equal(accountCurrency) {
			originalPrice := quote.Price
			originalCurrency, _ := domain.ParseCurrency(string(quote.Currency))
			hv.OriginalPrice = &originalPrice
			hv.OriginalPriceCurrency = &originalCurrency

			res := conversion.Convert(quote.Price, quote.Currency, accountCurrency, rates)
			hv.CurrentPrice = res.Amount
			hv.ConversionSkipped = res.Skipped()
			if res.Warning != "" {
				warnings = append(warnings, fmt.Sprintf("%s: %s", domain.NormalizeSymbol(h.Symbol), res.Warning))
			}
			if res.Converted() {
				value := conversion.Convert(h.Quantity.Mul(quote.Price), quote.Currency, accountCurrency, rates).Amount
				convertedValue = &value
			}
		}
	}

	hv.CurrentValue = h.Quantity.Mul(hv.CurrentPrice)
	if convertedValue != nil {
		hv.CurrentValue = *convertedValue
	}
	hv.GainLoss = hv.CurrentValue.Sub(hv.CostBasis)
	hv.GainLossPercent = percentOf(hv.GainLoss, hv.CostBasis)

	return hv, warnings
}

// percentOf returns part / whole x 100, defined as 0 when whole is 0
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Mul(hundred).DivRound(whole, percentPrecision)
}
