package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthflow-valuation/internal/domain"
)

// snapshotRepository implements domain.SnapshotRepository
type snapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a new account snapshot repository
func NewSnapshotRepository(db *DB) domain.SnapshotRepository {
	return &snapshotRepository{db: db}
}

// Add inserts every snapshot in a single transaction
func (r *snapshotRepository) Add(ctx context.Context, snapshots []domain.AccountSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO account_snapshots (id, owner_id, account_id, account_name, currency, market_value, cost_basis, taken_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range snapshots {
		_, err := stmt.ExecContext(ctx,
			s.ID,
			s.OwnerID,
			s.AccountID,
			s.AccountName,
			string(s.Currency),
			s.MarketValue.String(),
			s.CostBasis.String(),
			s.TakenAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot for account %s: %w", s.AccountID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshots: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent snapshot of an account
func (r *snapshotRepository) GetLatest(ctx context.Context, accountID uuid.UUID) (*domain.AccountSnapshot, error) {
	query := `
		SELECT id, owner_id, account_id, account_name, currency, market_value, cost_basis, taken_at
		FROM account_snapshots
		WHERE account_id = $1
		ORDER BY taken_at DESC
		LIMIT 1
	`

	snapshot, err := scanSnapshot(r.db.QueryRowContext(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no snapshot found for account %s: %w", accountID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	return snapshot, nil
}

// ListByOwner retrieves up to limit snapshots of an owner, newest first
func (r *snapshotRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.AccountSnapshot, error) {
	query := `
		SELECT id, owner_id, account_id, account_name, currency, market_value, cost_basis, taken_at
		FROM account_snapshots
		WHERE owner_id = $1
		ORDER BY taken_at DESC, account_name
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]domain.AccountSnapshot, 0)
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, *snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return snapshots, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*domain.AccountSnapshot, error) {
	var s domain.AccountSnapshot
	var currency, marketValueStr, costBasisStr string

	if err := row.Scan(&s.ID, &s.OwnerID, &s.AccountID, &s.AccountName, &currency, &marketValueStr, &costBasisStr, &s.TakenAt); err != nil {
		return nil, err
	}
	s.Currency = domain.Currency(strings.TrimSpace(currency))

	// Parse market_value and cost_basis (NUMERIC)
	var err error
	if s.MarketValue, err = decimal.NewFromString(marketValueStr); err != nil {
		return nil, fmt.Errorf("failed to parse market_value: %w", err)
	}
	if s.CostBasis, err = decimal.NewFromString(costBasisStr); err != nil {
		return nil, fmt.Errorf("failed to parse cost_basis: %w", err)
	}
	return &s, nil
}
