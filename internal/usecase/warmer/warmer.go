package warmer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/simaogato/wealthflow-valuation/internal/domain"
)

// QuoteWarmer pre-fetches quotes for every held symbol so valuations hit a fresh cache
type QuoteWarmer struct {
	accountRepo domain.AccountRepository
	priceSource domain.PriceSource
	log         zerolog.Logger
}

// NewQuoteWarmer creates a new quote warmer
func NewQuoteWarmer(accountRepo domain.AccountRepository, priceSource domain.PriceSource, log zerolog.Logger) *QuoteWarmer {
	return &QuoteWarmer{
		accountRepo: accountRepo,
		priceSource: priceSource,
		log:         log.With().Str("usecase", "warmer").Logger(),
	}
}

// Warm fetches quotes for all held symbols
// Individual symbol failures are logged; an error is returned only when the symbols cannot be
// listed or when not a single symbol could be priced.
func (w *QuoteWarmer) Warm(ctx context.Context) error {
	symbols, err := w.accountRepo.ListSymbols(ctx)
	if err != nil {
		return fmt.Errorf("failed to list held symbols: %w", err)
	}
	if len(symbols) == 0 {
		w.log.Debug().Msg("no held symbols to warm")
		return nil
	}

	book := w.priceSource.FetchQuotes(ctx, symbols)

	var failed []string
	for symbol, result := range book {
		if result.IsError() {
			failed = append(failed, symbol)
		}
	}

	w.log.Info().
		Int("symbols", len(book)).
		Int("failed", len(failed)).
		Strs("failed_symbols", failed).
		Msg("quote cache warmed")

	if len(book) > 0 && len(failed) == len(book) {
		return fmt.Errorf("failed to price any of %d symbols", len(book))
	}
	return nil
}
