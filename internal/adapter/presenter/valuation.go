package presenter

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-valuation/internal/domain"
)

// ValuationResponse is the wire shape of a valuation, shared by the HTTP and gRPC transports
type ValuationResponse struct {
	Portfolio      PortfolioResponse    `json:"portfolio"`
	Accounts       []AccountResponse    `json:"accounts"`
	Allocation     []AllocationResponse `json:"allocation"`
	RatesAvailable bool                 `json:"rates_available"`
	Rates          *RatesResponse       `json:"rates,omitempty"`
	Warnings       []string             `json:"warnings"`
	ValuedAt       time.Time            `json:"valued_at"`
}

type PortfolioResponse struct {
	TotalValue           string           `json:"total_value"`
	TotalCostBasis       string           `json:"total_cost_basis"`
	TotalGainLoss        string           `json:"total_gain_loss"`
	TotalGainLossPercent string           `json:"total_gain_loss_percent"`
	Currency             string           `json:"currency,omitempty"`
	MixedCurrencies      bool             `json:"mixed_currencies"`
	AccountCount         int              `json:"account_count"`
	HoldingCount         int              `json:"holding_count"`
	Display              *DisplayResponse `json:"display,omitempty"`
}

// DisplayResponse carries symbol-formatted totals for clients that render them as is
type DisplayResponse struct {
	TotalValue    string `json:"total_value"`
	TotalGainLoss string `json:"total_gain_loss"`
}

type AccountResponse struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name"`
	Currency             string            `json:"currency"`
	Holdings             []HoldingResponse `json:"holdings"`
	Cash                 []CashResponse    `json:"cash"`
	HoldingsValue        string            `json:"holdings_value"`
	CashValue            string            `json:"cash_value"`
	TotalValue           string            `json:"total_value"`
	TotalCostBasis       string            `json:"total_cost_basis"`
	TotalGainLoss        string            `json:"total_gain_loss"`
	TotalGainLossPercent string            `json:"total_gain_loss_percent"`
	Display              DisplayResponse   `json:"display"`
}

type HoldingResponse struct {
	ID                    string     `json:"id"`
	Symbol                string     `json:"symbol"`
	Quantity              string     `json:"quantity"`
	AvgCostBasis          string     `json:"avg_cost_basis"`
	CurrentPrice          string     `json:"current_price"`
	CurrentValue          string     `json:"current_value"`
	CostBasis             string     `json:"cost_basis"`
	GainLoss              string     `json:"gain_loss"`
	GainLossPercent       string     `json:"gain_loss_percent"`
	OriginalPrice         *string    `json:"original_price,omitempty"`
	OriginalPriceCurrency *string    `json:"original_price_currency,omitempty"`
	PriceUnavailable      bool       `json:"price_unavailable"`
	PriceError            string     `json:"price_error,omitempty"`
	ConversionSkipped     bool       `json:"conversion_skipped"`
	QuotedAt              *time.Time `json:"quoted_at,omitempty"`
	FromCache             bool       `json:"from_cache"`
}

type CashResponse struct {
	ID                string `json:"id"`
	Currency          string `json:"currency"`
	Amount            string `json:"amount"`
	ConvertedAmount   string `json:"converted_amount"`
	Converted         bool   `json:"converted"`
	ConversionSkipped bool   `json:"conversion_skipped"`
}

type AllocationResponse struct {
	Symbol     string `json:"symbol"`
	Value      string `json:"value"`
	Percentage string `json:"percentage"`
	Color      string `json:"color"`
}

// RatesResponse lists the ILS rate of each supported currency
type RatesResponse struct {
	USD       string    `json:"USD"`
	EUR       string    `json:"EUR"`
	GBP       string    `json:"GBP"`
	FetchedAt time.Time `json:"fetched_at"`
}

// NewValuationResponse maps a valuation to its wire shape
// Amounts are rounded to the minor unit of the currency they are expressed in.
func NewValuationResponse(v *domain.Valuation) ValuationResponse {
	resp := ValuationResponse{
		Portfolio:      newPortfolioResponse(v.Portfolio),
		Accounts:       make([]AccountResponse, 0, len(v.Accounts)),
		Allocation:     make([]AllocationResponse, 0, len(v.Allocation)),
		RatesAvailable: v.RatesAvailable,
		Warnings:       v.Warnings,
		ValuedAt:       v.ValuedAt,
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}

	for _, acc := range v.Accounts {
		resp.Accounts = append(resp.Accounts, newAccountResponse(acc))
	}

	// Allocation values are in the portfolio currency when there is one
	for _, item := range v.Allocation {
		resp.Allocation = append(resp.Allocation, AllocationResponse{
			Symbol:     item.Symbol,
			Value:      Amount(item.Value, v.Portfolio.Currency),
			Percentage: Percent(item.Percentage),
			Color:      item.Color,
		})
	}

	if v.Rates != nil {
		resp.Rates = &RatesResponse{
			USD:       v.Rates.USD.String(),
			EUR:       v.Rates.EUR.String(),
			GBP:       v.Rates.GBP.String(),
			FetchedAt: v.Rates.FetchedAt,
		}
	}

	return resp
}

func newPortfolioResponse(p domain.PortfolioSummary) PortfolioResponse {
	resp := PortfolioResponse{
		TotalValue:           Amount(p.TotalValue, p.Currency),
		TotalCostBasis:       Amount(p.TotalCostBasis, p.Currency),
		TotalGainLoss:        Amount(p.TotalGainLoss, p.Currency),
		TotalGainLossPercent: Percent(p.TotalGainLossPercent),
		Currency:             p.Currency.String(),
		MixedCurrencies:      p.MixedCurrencies,
		AccountCount:         p.AccountCount,
		HoldingCount:         p.HoldingCount,
	}
	// A mixed-currency total has no meaningful symbol
	if !p.MixedCurrencies && p.Currency != "" {
		resp.Display = &DisplayResponse{
			TotalValue:    Display(p.TotalValue, p.Currency),
			TotalGainLoss: Display(p.TotalGainLoss, p.Currency),
		}
	}
	return resp
}

func newAccountResponse(a domain.AccountSummary) AccountResponse {
	resp := AccountResponse{
		ID:                   a.AccountID.String(),
		Name:                 a.Name,
		Currency:             a.Currency.String(),
		Holdings:             make([]HoldingResponse, 0, len(a.Holdings)),
		Cash:                 make([]CashResponse, 0, len(a.Cash)),
		HoldingsValue:        Amount(a.HoldingsValue, a.Currency),
		CashValue:            Amount(a.CashValue, a.Currency),
		TotalValue:           Amount(a.TotalValue, a.Currency),
		TotalCostBasis:       Amount(a.TotalCostBasis, a.Currency),
		TotalGainLoss:        Amount(a.TotalGainLoss, a.Currency),
		TotalGainLossPercent: Percent(a.TotalGainLossPercent),
		Display: DisplayResponse{
			TotalValue:    Display(a.TotalValue, a.Currency),
			TotalGainLoss: Display(a.TotalGainLoss, a.Currency),
		},
	}

	for _, h := range a.Holdings {
		resp.Holdings = append(resp.Holdings, newHoldingResponse(h, a.Currency))
	}
	for _, c := range a.Cash {
		cashCurrency := a.Currency
		if c.ConversionSkipped {
			cashCurrency = c.Currency
		}
		resp.Cash = append(resp.Cash, CashResponse{
			ID:                c.ID.String(),
			Currency:          c.Currency.String(),
			Amount:            Amount(c.Amount, c.Currency),
			ConvertedAmount:   Amount(c.ConvertedAmount, cashCurrency),
			Converted:         c.Converted,
			ConversionSkipped: c.ConversionSkipped,
		})
	}

	return resp
}

func newHoldingResponse(h domain.HoldingValue, accountCurrency domain.Currency) HoldingResponse {
	resp := HoldingResponse{
		ID:                h.ID.String(),
		Symbol:            h.Symbol,
		Quantity:          h.Quantity.String(),
		AvgCostBasis:      Price(h.AvgCostBasis),
		CurrentPrice:      Price(h.CurrentPrice),
		CurrentValue:      Amount(h.CurrentValue, accountCurrency),
		CostBasis:         Amount(h.CostBasis, accountCurrency),
		GainLoss:          Amount(h.GainLoss, accountCurrency),
		GainLossPercent:   Percent(h.GainLossPercent),
		PriceUnavailable:  h.PriceUnavailable,
		PriceError:        h.PriceError,
		ConversionSkipped: h.ConversionSkipped,
		FromCache:         h.FromCache,
	}
	if h.OriginalPrice != nil {
		resp.OriginalPrice = stringPtr(Price(*h.OriginalPrice))
	}
	if h.OriginalPriceCurrency != nil {
		resp.OriginalPriceCurrency = stringPtr(h.OriginalPriceCurrency.String())
	}
	if !h.QuotedAt.IsZero() {
		quotedAt := h.QuotedAt
		resp.QuotedAt = &quotedAt
	}
	return resp
}

func stringPtr(s string) *string { return &s }

// RoundTotal rounds an amount to its currency's minor unit, for exporters that need a decimal
func RoundTotal(amount decimal.Decimal, currency domain.Currency) decimal.Decimal {
	return amount.Round(fraction(currency))
}
