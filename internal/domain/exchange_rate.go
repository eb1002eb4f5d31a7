package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRateSet holds same-instant rates into the pivot currency
// Every rate is "1 unit of this currency = N ILS". The set is either complete or absent:
// a nil *ExchangeRateSet means rates are unavailable and no conversion may happen.
type ExchangeRateSet struct {
	USD       decimal.Decimal
	EUR       decimal.Decimal
	GBP       decimal.Decimal
	FetchedAt time.Time
}

// Rate returns the ILS rate of a currency
// ILS is always 1. The second value is false for unsupported currencies.
func (r *ExchangeRateSet) Rate(c Currency) (decimal.Decimal, bool) {
	if r == nil {
		return decimal.Zero, false
	}
	code, _ := ParseCurrency(string(c))
	switch code {
	case CurrencyUSD:
		return r.USD, true
	case CurrencyEUR:
		return r.EUR, true
	case CurrencyGBP:
		return r.GBP, true
	case CurrencyILS:
		return decimal.NewFromInt(1), true
	}
	return decimal.Zero, false
}

// Validate ensures every fetched rate is strictly positive
func (r *ExchangeRateSet) Validate() error {
	for _, c := range []Currency{CurrencyUSD, CurrencyEUR, CurrencyGBP} {
		rate, _ := r.Rate(c)
		if !rate.IsPositive() {
			return fmt.Errorf("%w: rate for %s must be positive, got %s", ErrInvalidInput, c, rate)
		}
	}
	return nil
}

// RateSource fetches a complete ExchangeRateSet
// It returns nil on any partial or total failure.
type RateSource interface {
	FetchExchangeRates(ctx context.Context) *ExchangeRateSet
}
