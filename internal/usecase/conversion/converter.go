package conversion

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-valuation/internal/domain"
)

// Status describes how Convert produced its amount
type Status int

const (
	// StatusIdentity means source and target currency are the same
	StatusIdentity Status = iota
	// StatusConverted means the amount was converted through the pivot currency
	StatusConverted
	// StatusFallbackRate means the source currency is unsupported and a fallback rate was used
	StatusFallbackRate
	// StatusSkippedNoRates means no exchange rates were available, the amount is unconverted
	StatusSkippedNoRates
	// StatusSkippedZeroRate means a required rate was zero or missing, the amount is unconverted
	StatusSkippedZeroRate
	// StatusSkippedUnsupported means the target currency is unsupported, the amount is unconverted
	StatusSkippedUnsupported
)

func (s Status) String() string {
	switch s {
	case StatusIdentity:
		return "identity"
	case StatusConverted:
		return "converted"
	case StatusFallbackRate:
		return "fallback_rate"
	case StatusSkippedNoRates:
		return "skipped_no_rates"
	case StatusSkippedZeroRate:
		return "skipped_zero_rate"
	case StatusSkippedUnsupported:
		return "skipped_unsupported"
	}
	return "unknown"
}

// Result is the outcome of a single conversion
// Warning is non-empty whenever the caller must surface a degraded conversion.
type Result struct {
	Amount  decimal.Decimal
	Status  Status
	Warning string
}

// Converted reports whether Amount is expressed in the target currency
func (r Result) Converted() bool {
	switch r.Status {
	case StatusIdentity, StatusConverted, StatusFallbackRate:
		return true
	}
	return false
}

// Skipped reports whether Amount was passed through in the source currency
func (r Result) Skipped() bool {
	return !r.Converted()
}

// Convert converts an amount between two currencies through the ILS pivot
// Logic:
//   - same currency (case-insensitive): amount unchanged, no rate lookup
//   - rates == nil: amount unchanged, flagged as skipped
//   - amountInILS = amount x rate(from); returned as is when to == ILS, else divided by rate(to)
//   - unsupported source currency: USD rate, then 1 if USD is unusable, flagged with a warning
//   - unsupported target currency, zero or missing rate: amount unchanged, flagged as skipped
func Convert(amount decimal.Decimal, from, to domain.Currency, rates *domain.ExchangeRateSet) Result {
	if from.Equal(to) {
		return Result{Amount: amount, Status: StatusIdentity}
	}

	src, _ := domain.ParseCurrency(string(from))
	dst, dstSupported := domain.ParseCurrency(string(to))

	if rates == nil {
		return Result{
			Amount:  amount,
			Status:  StatusSkippedNoRates,
			Warning: fmt.Sprintf("exchange rates unavailable, %s amount left unconverted (wanted %s)", src, dst),
		}
	}

	if !dstSupported {
		return Result{
			Amount:  amount,
			Status:  StatusSkippedUnsupported,
			Warning: fmt.Sprintf("unsupported target currency %q, %s amount left unconverted", dst, src),
		}
	}

	status := StatusConverted
	warning := ""

	fromRate, ok := rates.Rate(src)
	if !ok {
		fromRate, warning = fallbackRate(src, rates)
		status = StatusFallbackRate
	}
	if !fromRate.IsPositive() {
		return Result{
			Amount:  amount,
			Status:  StatusSkippedZeroRate,
			Warning: fmt.Sprintf("no usable %s rate, amount left unconverted", src),
		}
	}

	inPivot := amount.Mul(fromRate)
	if dst == domain.PivotCurrency {
		return Result{Amount: inPivot, Status: status, Warning: warning}
	}

	toRate, _ := rates.Rate(dst)
	if !toRate.IsPositive() {
		return Result{
			Amount:  amount,
			Status:  StatusSkippedZeroRate,
			Warning: fmt.Sprintf("no usable %s rate, %s amount left unconverted", dst, src),
		}
	}

	return Result{Amount: inPivot.Div(toRate), Status: status, Warning: warning}
}

// fallbackRate applies the last-resort policy for unsupported source currencies
func fallbackRate(code domain.Currency, rates *domain.ExchangeRateSet) (decimal.Decimal, string) {
	if usd, _ := rates.Rate(domain.CurrencyUSD); usd.IsPositive() {
		return usd, fmt.Sprintf("unsupported currency %q valued with the USD rate", code)
	}
	return decimal.NewFromInt(1), fmt.Sprintf("unsupported currency %q valued at a rate of 1", code)
}
