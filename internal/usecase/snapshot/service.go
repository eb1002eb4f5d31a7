package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/simaogato/wealthflow-valuation/internal/domain"
)

const (
	// DefaultHistoryLimit is used when a caller does not ask for a specific number of snapshots
	DefaultHistoryLimit = 30
	// MaxHistoryLimit caps a single history read
	MaxHistoryLimit = 365
)

// OwnerValuator values every account of an owner
type OwnerValuator interface {
	ValuateOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Valuation, error)
}

// SnapshotService records account market values over time
type SnapshotService struct {
	Valuator     OwnerValuator
	SnapshotRepo domain.SnapshotRepository
	AccountRepo  domain.AccountRepository
	log          zerolog.Logger
	now          func() time.Time
}

// NewSnapshotService creates a new SnapshotService instance
func NewSnapshotService(valuator OwnerValuator, snapshotRepo domain.SnapshotRepository, accountRepo domain.AccountRepository, log zerolog.Logger) *SnapshotService {
	return &SnapshotService{
		Valuator:     valuator,
		SnapshotRepo: snapshotRepo,
		AccountRepo:  accountRepo,
		log:          log.With().Str("usecase", "snapshot").Logger(),
		now:          time.Now,
	}
}

// Capture values an owner's accounts and records one snapshot per account
// Accounts with an incomplete valuation (a missing price or a skipped conversion)
// are left out so history never records an understated total.
func (s *SnapshotService) Capture(ctx context.Context, ownerID uuid.UUID) ([]domain.AccountSnapshot, error) {
	valuation, err := s.Valuator.ValuateOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	takenAt := valuation.ValuedAt
	if takenAt.IsZero() {
		takenAt = s.now()
	}

	snapshots := make([]domain.AccountSnapshot, 0, len(valuation.Accounts))
	for _, account := range valuation.Accounts {
		if !isComplete(account) {
			s.log.Warn().
				Str("owner_id", ownerID.String()).
				Str("account", account.Name).
				Msg("skipping snapshot of incompletely valued account")
			continue
		}

		snapshots = append(snapshots, domain.AccountSnapshot{
			ID:          uuid.New(),
			OwnerID:     ownerID,
			AccountID:   account.AccountID,
			AccountName: account.Name,
			Currency:    account.Currency,
			MarketValue: account.TotalValue,
			CostBasis:   account.TotalCostBasis,
			TakenAt:     takenAt,
		})
	}

	if err := s.SnapshotRepo.Add(ctx, snapshots); err != nil {
		return nil, err
	}

	return snapshots, nil
}

// CaptureAll records snapshots for every owner
// A failing owner is logged and skipped; an error is returned only when owners cannot be
// listed or every owner failed.
func (s *SnapshotService) CaptureAll(ctx context.Context) error {
	owners, err := s.AccountRepo.ListOwners(ctx)
	if err != nil {
		return fmt.Errorf("failed to list owners: %w", err)
	}

	var failed, recorded int
	for _, ownerID := range owners {
		snapshots, err := s.Capture(ctx, ownerID)
		if err != nil {
			failed++
			s.log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("snapshot capture failed")
			continue
		}
		recorded += len(snapshots)
	}

	s.log.Info().
		Int("owners", len(owners)).
		Int("failed", failed).
		Int("snapshots", recorded).
		Msg("snapshots captured")

	if len(owners) > 0 && failed == len(owners) {
		return fmt.Errorf("failed to capture snapshots for any of %d owners", len(owners))
	}
	return nil
}

// History returns an owner's snapshots, newest first
// A non-positive limit falls back to DefaultHistoryLimit.
func (s *SnapshotService) History(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.AccountSnapshot, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return s.SnapshotRepo.ListByOwner(ctx, ownerID, limit)
}

func isComplete(account domain.AccountSummary) bool {
	for _, h := range account.Holdings {
		if h.PriceUnavailable || h.ConversionSkipped {
			return false
		}
	}
	for _, c := range account.Cash {
		if c.ConversionSkipped {
			return false
		}
	}
	return true
}
