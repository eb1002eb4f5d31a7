package valuation

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-valuation/internal/domain"
)

// Palette is the fixed list of allocation colours, assigned by sorted symbol index
var Palette = []string{
	"#0088FE",
	"#00C49F",
	"#FFBB28",
	"#FF8042",
	"#8884D8",
	"#82CA9D",
	"#FFC658",
	"#FF6B6B",
	"#4ECDC4",
	"#45B7D1",
}

// SummarizePortfolio sums account totals into portfolio totals
// No currency conversion happens here: every account is already normalized into its own
// currency. When accounts use different currencies, MixedCurrencies is set and Currency is empty.
func SummarizePortfolio(accounts []domain.AccountSummary) domain.PortfolioSummary {
	summary := domain.PortfolioSummary{
		TotalValue:     decimal.Zero,
		TotalCostBasis: decimal.Zero,
		TotalGainLoss:  decimal.Zero,
		AccountCount:   len(accounts),
	}

	for i, acc := range accounts {
		summary.TotalValue = summary.TotalValue.Add(acc.TotalValue)
		summary.TotalCostBasis = summary.TotalCostBasis.Add(acc.TotalCostBasis)
		summary.TotalGainLoss = summary.TotalGainLoss.Add(acc.TotalGainLoss)
		summary.HoldingCount += len(acc.Holdings)

		code, _ := domain.ParseCurrency(string(acc.Currency))
		switch {
		case i == 0:
			summary.Currency = code
		case summary.Currency != code:
			summary.MixedCurrencies = true
		}
	}

	if summary.MixedCurrencies {
		summary.Currency = ""
	}
	summary.TotalGainLossPercent = percentOf(summary.TotalGainLoss, summary.TotalCostBasis)

	return summary
}

// ComputeAllocation groups holdings by symbol across all accounts
// Logic:
//  1. Sum CurrentValue per normalized symbol over every account
//  2. Percentage = symbol value / total holdings value x 100; cash is not a symbol and
//     is excluded from the denominator, so a cash-only portfolio has no allocation
//  3. Items are ordered by symbol and coloured from Palette by that order
//
// Returns an empty list when the total value is 0.
func ComputeAllocation(accounts []domain.AccountSummary) []domain.AllocationItem {
	bySymbol := make(map[string]decimal.Decimal)
	total := decimal.Zero

	for _, acc := range accounts {
		for _, hv := range acc.Holdings {
			symbol := domain.NormalizeSymbol(hv.Symbol)
			bySymbol[symbol] = bySymbol[symbol].Add(hv.CurrentValue)
			total = total.Add(hv.CurrentValue)
		}
	}

	if !total.IsPositive() {
		return []domain.AllocationItem{}
	}

	symbols := make([]string, 0, len(bySymbol))
	for symbol := range bySymbol {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	items := make([]domain.AllocationItem, 0, len(symbols))
	for i, symbol := range symbols {
		value := bySymbol[symbol]
		items = append(items, domain.AllocationItem{
			Symbol:     symbol,
			Value:      value,
			Percentage: percentOf(value, total),
			Color:      Palette[i%len(Palette)],
		})
	}

	return items
}
