package valuation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-valuation/internal/domain"
)

func valued(symbol, value string) domain.HoldingValue {
	return domain.HoldingValue{
		Holding:      domain.Holding{ID: uuid.New(), Symbol: symbol, Quantity: decimal.NewFromInt(1)},
		CurrentValue: d(value),
		CostBasis:    d(value),
	}
}

func TestComputeAllocation_GroupsBySymbolAcrossAccounts(t *testing.T) {
	accounts := []domain.AccountSummary{
		{Name: "A", Currency: domain.CurrencyUSD, Holdings: []domain.HoldingValue{valued("MSFT", "300"), valued("aapl", "100")}},
		{Name: "B", Currency: domain.CurrencyUSD, Holdings: []domain.HoldingValue{valued("AAPL", "100"), valued("VOO", "500")}},
	}

	items := ComputeAllocation(accounts)

	require.Len(t, items, 3)
	assert.Equal(t, "AAPL", items[0].Symbol)
	assert.True(t, items[0].Value.Equal(d("200")))
	assert.True(t, items[0].Percentage.Equal(d("20")))
	assert.Equal(t, "MSFT", items[1].Symbol)
	assert.True(t, items[1].Percentage.Equal(d("30")))
	assert.Equal(t, "VOO", items[2].Symbol)
	assert.True(t, items[2].Percentage.Equal(d("50")))

	for i, item := range items {
		assert.Equal(t, Palette[i], item.Color)
	}
}

func TestComputeAllocation_SumsToHundred(t *testing.T) {
	accounts := []domain.AccountSummary{
		{Holdings: []domain.HoldingValue{valued("A", "1"), valued("B", "1"), valued("C", "1")}},
		{Holdings: []domain.HoldingValue{valued("D", "7.77"), valued("E", "0.01")}},
	}

	items := ComputeAllocation(accounts)

	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Percentage)
	}
	assert.True(t, sum.Sub(decimal.NewFromInt(100)).Abs().LessThan(d("0.000001")), "sum %s", sum)
}

func TestComputeAllocation_ZeroTotalIsEmpty(t *testing.T) {
	accounts := []domain.AccountSummary{
		{Holdings: []domain.HoldingValue{valued("XYZ", "0")}},
	}

	items := ComputeAllocation(accounts)

	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Empty(t, ComputeAllocation(nil))
}

func TestComputeAllocation_StableColours(t *testing.T) {
	many := make([]domain.HoldingValue, 0, len(Palette)+2)
	for _, s := range []string{"L", "K", "J", "I", "H", "G", "F", "E", "D", "C", "B", "A"} {
		many = append(many, valued(s, "10"))
	}
	accounts := []domain.AccountSummary{{Holdings: many}}

	first := ComputeAllocation(accounts)
	second := ComputeAllocation(accounts)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Symbol, second[i].Symbol)
		assert.Equal(t, first[i].Color, second[i].Color)
	}
	// Palette wraps around after its last colour
	assert.Equal(t, Palette[0], first[len(Palette)].Color)
}

func TestSummarizePortfolio_SumsAccounts(t *testing.T) {
	accounts := []domain.AccountSummary{
		{Currency: domain.CurrencyILS, TotalValue: d("11836"), TotalCostBasis: d("11000"), TotalGainLoss: d("-200"),
			Holdings: []domain.HoldingValue{valued("AAPL", "1"), valued("TEVA", "1")}},
		{Currency: domain.CurrencyILS, TotalValue: d("1000"), TotalCostBasis: d("800"), TotalGainLoss: d("200"),
			Holdings: []domain.HoldingValue{valued("VOO", "1")}},
	}

	summary := SummarizePortfolio(accounts)

	assert.True(t, summary.TotalValue.Equal(d("12836")))
	assert.True(t, summary.TotalCostBasis.Equal(d("11800")))
	assert.True(t, summary.TotalGainLoss.IsZero())
	assert.True(t, summary.TotalGainLossPercent.IsZero())
	assert.Equal(t, domain.CurrencyILS, summary.Currency)
	assert.False(t, summary.MixedCurrencies)
	assert.Equal(t, 2, summary.AccountCount)
	assert.Equal(t, 3, summary.HoldingCount)
}

func TestSummarizePortfolio_MixedCurrencies(t *testing.T) {
	accounts := []domain.AccountSummary{
		{Currency: domain.CurrencyILS, TotalValue: d("100")},
		{Currency: domain.CurrencyUSD, TotalValue: d("50")},
	}

	summary := SummarizePortfolio(accounts)

	assert.True(t, summary.MixedCurrencies)
	assert.Empty(t, summary.Currency)
	assert.True(t, summary.TotalValue.Equal(d("150")), "no cross conversion at portfolio level")
}

func TestSummarizePortfolio_Empty(t *testing.T) {
	summary := SummarizePortfolio(nil)

	assert.True(t, summary.TotalValue.IsZero())
	assert.True(t, summary.TotalGainLossPercent.IsZero())
	assert.Equal(t, 0, summary.AccountCount)
}

func TestComputeAllocation_CashIsExcluded(t *testing.T) {
	accounts := []domain.AccountSummary{
		{Holdings: []domain.HoldingValue{valued("AAPL", "100")}, CashValue: d("100"), TotalValue: d("200")},
		{CashValue: d("100"), TotalValue: d("100")},
	}

	items := ComputeAllocation(accounts)

	require.Len(t, items, 1)
	assert.True(t, items[0].Percentage.Equal(d("100")), "cash does not dilute holdings, got %s", items[0].Percentage)

	assert.Empty(t, ComputeAllocation(accounts[1:]), "cash-only portfolios have no allocation")
}
