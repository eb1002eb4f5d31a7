package valuation

import (
	"time"

	"github.com/simaogato/wealthflow-valuation/internal/domain"
)

// Valuate runs the pure valuation pipeline over already fetched quotes and rates
// quotes -> holdings -> accounts -> portfolio totals and allocation.
// Deterministic for fixed inputs; accounts and holdings keep their input order.
func Valuate(accounts []domain.Account, quotes domain.QuoteBook, rates *domain.ExchangeRateSet, now time.Time) *domain.Valuation {
	var warnings warningList
	if rates == nil {
		warnings.add("exchange rates unavailable, foreign amounts are reported unconverted")
	}

	summaries := make([]domain.AccountSummary, 0, len(accounts))
	for _, account := range accounts {
		holdings := make([]domain.HoldingValue, 0, len(account.Holdings))
		for _, h := range account.Holdings {
			hv, hw := ValuateHolding(h, quotes.Lookup(h.Symbol), account.Currency, rates)
			holdings = append(holdings, hv)
			warnings.add(hw...)
		}

		summary, aw := SummarizeAccount(account, holdings, rates)
		summaries = append(summaries, summary)
		warnings.add(aw...)
	}

	portfolio := SummarizePortfolio(summaries)
	if portfolio.MixedCurrencies {
		warnings.add("accounts use different currencies, portfolio totals are not cross-converted")
	}

	return &domain.Valuation{
		Portfolio:      portfolio,
		Accounts:       summaries,
		Allocation:     ComputeAllocation(summaries),
		RatesAvailable: rates != nil,
		Rates:          rates,
		Warnings:       warnings.items,
		ValuedAt:       now,
	}
}

// warningList keeps warnings in first-seen order without duplicates
type warningList struct {
	items []string
	seen  map[string]struct{}
}

func (w *warningList) add(msgs ...string) {
	for _, m := range msgs {
		if m == "" {
			continue
		}
		if w.seen == nil {
			w.seen = make(map[string]struct{})
		}
		if _, ok := w.seen[m]; ok {
			continue
		}
		w.seen[m] = struct{}{}
		w.items = append(w.items, m)
	}
}
