package presenter

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-valuation/internal/domain"
)

// ValuationRequest is the body of an ad-hoc valuation
// Decimal fields accept JSON numbers or strings.
type ValuationRequest struct {
	Accounts []AccountInput `json:"accounts"`
}

type AccountInput struct {
	ID           string         `json:"id,omitempty"`
	Name         string         `json:"name"`
	Currency     string         `json:"currency"`
	Holdings     []HoldingInput `json:"holdings"`
	CashBalances []CashInput    `json:"cash_balances"`
}

type HoldingInput struct {
	ID           string          `json:"id,omitempty"`
	Symbol       string          `json:"symbol"`
	Quantity     decimal.Decimal `json:"quantity"`
	AvgCostBasis decimal.Decimal `json:"avg_cost_basis"`
}

type CashInput struct {
	ID       string          `json:"id,omitempty"`
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// ToDomain converts the request to domain accounts
// Missing ids are generated. Account and cash currencies must be supported ones; this is
// stricter than the engine, which tolerates unsupported codes coming from storage.
func (r ValuationRequest) ToDomain() ([]domain.Account, error) {
	accounts := make([]domain.Account, 0, len(r.Accounts))
	for i, in := range r.Accounts {
		id, err := parseID(in.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: accounts[%d].id: %v", domain.ErrInvalidInput, i, err)
		}
		currency, err := parseSupportedCurrency(in.Currency)
		if err != nil {
			return nil, fmt.Errorf("%w: accounts[%d].currency: %v", domain.ErrInvalidInput, i, err)
		}

		account := domain.Account{
			ID:           id,
			Name:         in.Name,
			Currency:     currency,
			Holdings:     make([]domain.Holding, 0, len(in.Holdings)),
			CashBalances: make([]domain.CashBalance, 0, len(in.CashBalances)),
		}

		for j, h := range in.Holdings {
			hid, err := parseID(h.ID)
			if err != nil {
				return nil, fmt.Errorf("%w: accounts[%d].holdings[%d].id: %v", domain.ErrInvalidInput, i, j, err)
			}
			account.Holdings = append(account.Holdings, domain.Holding{
				ID:           hid,
				Symbol:       h.Symbol,
				Quantity:     h.Quantity,
				AvgCostBasis: h.AvgCostBasis,
			})
		}

		for j, c := range in.CashBalances {
			cid, err := parseID(c.ID)
			if err != nil {
				return nil, fmt.Errorf("%w: accounts[%d].cash_balances[%d].id: %v", domain.ErrInvalidInput, i, j, err)
			}
			cashCurrency, err := parseSupportedCurrency(c.Currency)
			if err != nil {
				return nil, fmt.Errorf("%w: accounts[%d].cash_balances[%d].currency: %v", domain.ErrInvalidInput, i, j, err)
			}
			account.CashBalances = append(account.CashBalances, domain.CashBalance{
				ID:       cid,
				Currency: cashCurrency,
				Amount:   c.Amount,
			})
		}

		accounts = append(accounts, account)
	}
	return accounts, nil
}

func parseID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.New(), nil
	}
	return uuid.Parse(raw)
}

func parseSupportedCurrency(raw string) (domain.Currency, error) {
	currency, ok := domain.ParseCurrency(raw)
	if !ok {
		return "", fmt.Errorf("unsupported currency %q", raw)
	}
	return currency, nil
}
