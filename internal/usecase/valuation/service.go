package valuation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/simaogato/wealthflow-valuation/internal/domain"
)

// ValuationService is the single entry point of the valuation engine
// It gathers quotes and rates through the injected sources and runs the pure pipeline.
type ValuationService struct {
	PriceSource domain.PriceSource
	RateSource  domain.RateSource
	AccountRepo domain.AccountRepository

	log zerolog.Logger
	now func() time.Time
}

// NewValuationService creates a new ValuationService instance
// accountRepo may be nil when only Valuate is used.
func NewValuationService(
	priceSource domain.PriceSource,
	rateSource domain.RateSource,
	accountRepo domain.AccountRepository,
	log zerolog.Logger,
) *ValuationService {
	return &ValuationService{
		PriceSource: priceSource,
		RateSource:  rateSource,
		AccountRepo: accountRepo,
		log:         log.With().Str("service", "valuation").Logger(),
		now:         time.Now,
	}
}

// Valuate values the given accounts
// Logic:
//  1. Reject input that violates the contract (wraps domain.ErrInvalidInput)
//  2. Fetch quotes for the unique symbols and the exchange rates concurrently
//  3. Run the pure pipeline; adapter failures degrade values instead of failing the call
func (s *ValuationService) Valuate(ctx context.Context, accounts []domain.Account) (*domain.Valuation, error) {
	symbols := make([]string, 0)
	for i := range accounts {
		if err := accounts[i].Validate(); err != nil {
			return nil, err
		}
		symbols = append(symbols, accounts[i].Symbols()...)
	}
	symbols = domain.UniqueSymbols(symbols)

	s.log.Debug().Int("accounts", len(accounts)).Int("symbols", len(symbols)).Msg("Valuation started")

	var (
		quotes domain.QuoteBook
		rates  *domain.ExchangeRateSet
		g      errgroup.Group
	)
	g.Go(func() error {
		if len(symbols) == 0 {
			quotes = domain.QuoteBook{}
			return nil
		}
		quotes = s.PriceSource.FetchQuotes(ctx, symbols)
		return nil
	})
	g.Go(func() error {
		rates = s.RateSource.FetchExchangeRates(ctx)
		return nil
	})
	_ = g.Wait()

	result := Valuate(accounts, quotes, rates, s.now())

	for _, w := range result.Warnings {
		s.log.Warn().Str("warning", w).Msg("Valuation degraded")
	}
	s.log.Info().
		Int("accounts", len(result.Accounts)).
		Int("holdings", result.Portfolio.HoldingCount).
		Bool("rates_available", result.RatesAvailable).
		Str("total_value", result.Portfolio.TotalValue.String()).
		Msg("Valuation completed")

	return result, nil
}

// ValuateOwner loads an owner's accounts and values them
func (s *ValuationService) ValuateOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Valuation, error) {
	if s.AccountRepo == nil {
		return nil, fmt.Errorf("account repository is not configured")
	}

	accounts, err := s.AccountRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts for owner %s: %w", ownerID, err)
	}

	return s.Valuate(ctx, accounts)
}
