package valuation

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthflow-valuation/internal/domain"
	"github.com/simaogato/wealthflow-valuation/internal/usecase/conversion"
)

// SummarizeAccount aggregates valued holdings and cash balances of one account
// Logic:
//   - TotalValue = sum(holding CurrentValue) + sum(cash converted into the account currency)
//   - TotalGainLoss and TotalGainLossPercent come from holdings only (cash has no cost basis)
//   - Holdings keep their input order
func SummarizeAccount(account domain.Account, holdings []domain.HoldingValue, rates *domain.ExchangeRateSet) (domain.AccountSummary, []string) {
	var warnings []string

	holdingsValue := decimal.Zero
	costBasis := decimal.Zero
	for _, hv := range holdings {
		holdingsValue = holdingsValue.Add(hv.CurrentValue)
		costBasis = costBasis.Add(hv.CostBasis)
	}

	cash := make([]domain.CashValue, 0, len(account.CashBalances))
	cashValue := decimal.Zero
	for _, cb := range account.CashBalances {
		code, _ := domain.ParseCurrency(string(cb.Currency))
		res := conversion.Convert(cb.Amount, code, account.Currency, rates)
		if res.Warning != "" {
			warnings = append(warnings, fmt.Sprintf("%s cash in %q: %s", code, account.Name, res.Warning))
		}

		cash = append(cash, domain.CashValue{
			ID:                cb.ID,
			Currency:          code,
			Amount:            cb.Amount,
			ConvertedAmount:   res.Amount,
			Converted:         res.Status != conversion.StatusIdentity && res.Converted(),
			ConversionSkipped: res.Skipped(),
		})
		cashValue = cashValue.Add(res.Amount)
	}

	gainLoss := holdingsValue.Sub(costBasis)

	return domain.AccountSummary{
		AccountID:            account.ID,
		Name:                 account.Name,
		Currency:             account.Currency,
		Holdings:             holdings,
		Cash:                 cash,
		HoldingsValue:        holdingsValue,
		CashValue:            cashValue,
		TotalValue:           holdingsValue.Add(cashValue),
		TotalCostBasis:       costBasis,
		TotalGainLoss:        gainLoss,
		TotalGainLossPercent: percentOf(gainLoss, costBasis),
	}, warnings
}
