package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validAccount() Account {
	return Account{
		ID:       uuid.New(),
		Name:     "IBKR",
		Currency: CurrencyUSD,
		Holdings: []Holding{
			{ID: uuid.New(), Symbol: "AAPL", Quantity: decimal.NewFromInt(10), AvgCostBasis: decimal.NewFromInt(150)},
		},
		CashBalances: []CashBalance{
			{ID: uuid.New(), Currency: CurrencyUSD, Amount: decimal.NewFromInt(100)},
		},
	}
}

func TestAccount_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(a *Account)
		wantErr string
	}{
		{"valid account", func(a *Account) {}, ""},
		{"fractional shares and zero cost basis", func(a *Account) {
			a.Holdings[0].Quantity = decimal.RequireFromString("0.125")
			a.Holdings[0].AvgCostBasis = decimal.Zero
		}, ""},
		{"zero cash", func(a *Account) { a.CashBalances[0].Amount = decimal.Zero }, ""},
		{"unsupported account currency is left to conversion", func(a *Account) { a.Currency = "JPY" }, ""},
		{"empty name", func(a *Account) { a.Name = "   " }, "account name cannot be empty"},
		{"missing currency", func(a *Account) { a.Currency = "" }, "must have a currency"},
		{"empty symbol", func(a *Account) { a.Holdings[0].Symbol = " " }, "holding without symbol"},
		{"zero quantity", func(a *Account) { a.Holdings[0].Quantity = decimal.Zero }, "quantity must be positive"},
		{"negative quantity", func(a *Account) { a.Holdings[0].Quantity = decimal.NewFromInt(-1) }, "quantity must be positive"},
		{"negative cost basis", func(a *Account) { a.Holdings[0].AvgCostBasis = decimal.NewFromInt(-1) }, "cost basis cannot be negative"},
		{"negative cash", func(a *Account) { a.CashBalances[0].Amount = decimal.NewFromInt(-5) }, "cannot be negative"},
		{"cash without currency", func(a *Account) { a.CashBalances[0].Currency = "" }, "cash balance without currency"},
		{"duplicate cash currency", func(a *Account) {
			a.CashBalances = append(a.CashBalances, CashBalance{ID: uuid.New(), Currency: CurrencyUSD, Amount: decimal.NewFromInt(1)})
		}, "more than one USD cash balance"},
		{"duplicate cash currency differing in case", func(a *Account) {
			a.CashBalances = []CashBalance{
				{ID: uuid.New(), Currency: "usd", Amount: decimal.NewFromInt(1)},
				{ID: uuid.New(), Currency: "USD", Amount: decimal.NewFromInt(2)},
			}
		}, "more than one USD cash balance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := validAccount()
			tt.mutate(&account)

			err := account.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAccount_Symbols(t *testing.T) {
	account := validAccount()
	account.Holdings = append(account.Holdings, Holding{Symbol: "voo", Quantity: decimal.NewFromInt(1)})

	assert.Equal(t, []string{"AAPL", "voo"}, account.Symbols())
}
