package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-valuation/internal/domain"
)

// accountRepository implements domain.AccountRepository
type accountRepository struct {
	db *DB
}

// NewAccountRepository creates a new read-only account repository
func NewAccountRepository(db *DB) domain.AccountRepository {
	return &accountRepository{db: db}
}

// ListByOwner loads every account of an owner with its holdings and cash balances
// Logic:
// 1. Accounts ordered by name, then id
// 2. Holdings and cash balances loaded in one query each, keyed back to their account
// An owner without accounts yields domain.ErrNotFound.
func (r *accountRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Account, error) {
	query := `
		SELECT id, name, currency
		FROM accounts
		WHERE owner_id = $1
		ORDER BY name, id
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	index := make(map[uuid.UUID]int)
	ids := make([]string, 0)
	for rows.Next() {
		var account domain.Account
		var currency string
		if err := rows.Scan(&account.ID, &account.Name, &currency); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		account.Currency = domain.Currency(strings.TrimSpace(currency))
		index[account.ID] = len(accounts)
		ids = append(ids, account.ID.String())
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	if len(accounts) == 0 {
		return nil, fmt.Errorf("no accounts for owner %s: %w", ownerID, domain.ErrNotFound)
	}

	if err := r.loadHoldings(ctx, ids, index, accounts); err != nil {
		return nil, err
	}
	if err := r.loadCashBalances(ctx, ids, index, accounts); err != nil {
		return nil, err
	}

	return accounts, nil
}

func (r *accountRepository) loadHoldings(ctx context.Context, ids []string, index map[uuid.UUID]int, accounts []domain.Account) error {
	query := `
		SELECT id, account_id, symbol, quantity, avg_cost_basis
		FROM holdings
		WHERE account_id = ANY($1::uuid[])
		ORDER BY position, id
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var holding domain.Holding
		var accountID uuid.UUID
		var quantityStr, costStr string
		if err := rows.Scan(&holding.ID, &accountID, &holding.Symbol, &quantityStr, &costStr); err != nil {
			return fmt.Errorf("failed to scan holding: %w", err)
		}

		// Parse quantity and avg_cost_basis (NUMERIC)
		if holding.Quantity, err = decimal.NewFromString(quantityStr); err != nil {
			return fmt.Errorf("failed to parse quantity: %w", err)
		}
		if holding.AvgCostBasis, err = decimal.NewFromString(costStr); err != nil {
			return fmt.Errorf("failed to parse avg_cost_basis: %w", err)
		}

		i := index[accountID]
		accounts[i].Holdings = append(accounts[i].Holdings, holding)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating holdings: %w", err)
	}
	return nil
}

func (r *accountRepository) loadCashBalances(ctx context.Context, ids []string, index map[uuid.UUID]int, accounts []domain.Account) error {
	query := `
		SELECT id, account_id, currency, amount
		FROM cash_balances
		WHERE account_id = ANY($1::uuid[])
		ORDER BY currency, id
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to query cash balances: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cash domain.CashBalance
		var accountID uuid.UUID
		var currency, amountStr string
		if err := rows.Scan(&cash.ID, &accountID, &currency, &amountStr); err != nil {
			return fmt.Errorf("failed to scan cash balance: %w", err)
		}
		cash.Currency = domain.Currency(strings.TrimSpace(currency))

		if cash.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return fmt.Errorf("failed to parse amount: %w", err)
		}

		i := index[accountID]
		accounts[i].CashBalances = append(accounts[i].CashBalances, cash)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating cash balances: %w", err)
	}
	return nil
}

// ListSymbols returns every distinct held symbol, upper-cased and sorted
func (r *accountRepository) ListSymbols(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT UPPER(TRIM(symbol)) AS symbol
		FROM holdings
		ORDER BY symbol
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()

	symbols := make([]string, 0)
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating symbols: %w", err)
	}
	return symbols, nil
}

// ListOwners returns every owner with at least one account
func (r *accountRepository) ListOwners(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT owner_id FROM accounts ORDER BY owner_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query owners: %w", err)
	}
	defer rows.Close()

	owners := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		owners = append(owners, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating owners: %w", err)
	}
	return owners, nil
}
