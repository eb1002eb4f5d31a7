package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountSnapshot records what an account was worth at a point in time
// MarketValue is the account total, CostBasis what was paid for its holdings;
// both are in Currency.
type AccountSnapshot struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	AccountID   uuid.UUID
	AccountName string
	Currency    Currency
	MarketValue decimal.Decimal
	CostBasis   decimal.Decimal
	TakenAt     time.Time
}

// GainLoss returns MarketValue - CostBasis
func (s AccountSnapshot) GainLoss() decimal.Decimal {
	return s.MarketValue.Sub(s.CostBasis)
}

// SnapshotRepository defines the persistence operations for account snapshots
type SnapshotRepository interface {
	// Add stores a batch of snapshots atomically
	Add(ctx context.Context, snapshots []AccountSnapshot) error

	// GetLatest retrieves the most recent snapshot of an account
	// Returns an error wrapping ErrNotFound when the account has none.
	GetLatest(ctx context.Context, accountID uuid.UUID) (*AccountSnapshot, error)

	// ListByOwner retrieves an owner's snapshots, newest first
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]AccountSnapshot, error)
}
