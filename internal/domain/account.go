package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Holding represents a position in a single symbol owned by exactly one account
type Holding struct {
	ID           uuid.UUID
	Symbol       string
	Quantity     decimal.Decimal // > 0, fractional shares allowed
	AvgCostBasis decimal.Decimal // weighted average per unit, already in the account currency
}

// CashBalance represents uninvested cash of one currency held in an account
type CashBalance struct {
	ID       uuid.UUID
	Currency Currency
	Amount   decimal.Decimal // >= 0
}

// Account represents a brokerage account with its holdings and cash balances
// Currency is the account's native valuation currency; every gain/loss figure of
// the account is expressed in it.
type Account struct {
	ID           uuid.UUID
	Name         string
	Currency     Currency
	Holdings     []Holding
	CashBalances []CashBalance
}

// Validate ensures the account adheres to the valuation input contract
// Returns an error wrapping ErrInvalidInput if validation fails.
// Currency support is not checked here: unsupported codes are handled by the
// conversion fallback policy.
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return invalid("account name cannot be empty")
	}
	if strings.TrimSpace(string(a.Currency)) == "" {
		return invalid("account %q must have a currency", a.Name)
	}

	for _, h := range a.Holdings {
		if NormalizeSymbol(h.Symbol) == "" {
			return invalid("account %q has a holding without symbol", a.Name)
		}
		if !h.Quantity.IsPositive() {
			return invalid("holding %s quantity must be positive", h.Symbol)
		}
		if h.AvgCostBasis.IsNegative() {
			return invalid("holding %s cost basis cannot be negative", h.Symbol)
		}
	}

	seen := make(map[Currency]struct{}, len(a.CashBalances))
	for _, cb := range a.CashBalances {
		code, _ := ParseCurrency(string(cb.Currency))
		if code == "" {
			return invalid("account %q has a cash balance without currency", a.Name)
		}
		if cb.Amount.IsNegative() {
			return invalid("cash balance %s cannot be negative", code)
		}
		if _, dup := seen[code]; dup {
			return invalid("account %q has more than one %s cash balance", a.Name, code)
		}
		seen[code] = struct{}{}
	}

	return nil
}

// Symbols returns the symbols of every holding in input order
func (a *Account) Symbols() []string {
	out := make([]string, 0, len(a.Holdings))
	for _, h := range a.Holdings {
		out = append(out, h.Symbol)
	}
	return out
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// AccountRepository defines the read-only persistence operations the valuation needs
type AccountRepository interface {
	// ListByOwner retrieves every account of an owner with holdings and cash balances
	// Accounts are ordered by name, holdings by their stored position.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Account, error)

	// ListSymbols returns every distinct symbol currently held by any account
	ListSymbols(ctx context.Context) ([]string, error)

	// ListOwners returns every owner with at least one account
	ListOwners(ctx context.Context) ([]uuid.UUID, error)
}
