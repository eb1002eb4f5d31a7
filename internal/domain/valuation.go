package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HoldingValue represents a holding valued in its account's currency
// OriginalPrice and OriginalPriceCurrency keep the as-quoted figures whenever the
// quote currency differs from the account currency (dual-listed securities).
type HoldingValue struct {
	Holding

	CurrentPrice    decimal.Decimal
	CurrentValue    decimal.Decimal // Quantity x CurrentPrice
	CostBasis       decimal.Decimal // Quantity x AvgCostBasis
	GainLoss        decimal.Decimal // CurrentValue - CostBasis
	GainLossPercent decimal.Decimal // 0 when CostBasis is 0

	OriginalPrice         *decimal.Decimal
	OriginalPriceCurrency *Currency

	PriceUnavailable  bool   // the price source returned an error marker, price is 0
	PriceError        string // reason reported by the price source
	ConversionSkipped bool   // the quote could not be converted, CurrentPrice is in OriginalPriceCurrency
	QuotedAt          time.Time
	FromCache         bool
}

// CashValue represents a cash balance converted into its account's currency
type CashValue struct {
	ID                uuid.UUID
	Currency          Currency
	Amount            decimal.Decimal
	ConvertedAmount   decimal.Decimal
	Converted         bool // a rate was applied
	ConversionSkipped bool // ConvertedAmount is still in Currency
}

// AccountSummary represents the totals of a single account in its own currency
type AccountSummary struct {
	AccountID            uuid.UUID
	Name                 string
	Currency             Currency
	Holdings             []HoldingValue
	Cash                 []CashValue
	HoldingsValue        decimal.Decimal
	CashValue            decimal.Decimal
	TotalValue           decimal.Decimal // HoldingsValue + CashValue
	TotalCostBasis       decimal.Decimal
	TotalGainLoss        decimal.Decimal // holdings only
	TotalGainLossPercent decimal.Decimal
}

// PortfolioSummary represents the straight sum of all account summaries
// Currency is set only when every account shares it; otherwise MixedCurrencies is true
// and the totals add figures of different currencies.
type PortfolioSummary struct {
	TotalValue           decimal.Decimal
	TotalCostBasis       decimal.Decimal
	TotalGainLoss        decimal.Decimal
	TotalGainLossPercent decimal.Decimal
	Currency             Currency
	MixedCurrencies      bool
	AccountCount         int
	HoldingCount         int
}

// AllocationItem represents the share of one symbol across all accounts
type AllocationItem struct {
	Symbol     string
	Value      decimal.Decimal
	Percentage decimal.Decimal
	Color      string
}

// Valuation is the complete result of a valuation request
type Valuation struct {
	Portfolio      PortfolioSummary
	Accounts       []AccountSummary
	Allocation     []AllocationItem
	RatesAvailable bool
	Rates          *ExchangeRateSet
	Warnings       []string
	ValuedAt       time.Time
}
