package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Quote represents the most recent price of a symbol as returned by a price source
type Quote struct {
	Symbol    string
	Price     decimal.Decimal // >= 0, expressed in Currency
	Currency  Currency
	Timestamp time.Time
	FromCache bool // true when served from the quote cache instead of a live fetch
}

// QuoteResult is either a priced Quote or an error marker for a single symbol
// Exactly one of Quote and ErrorReason is set.
type QuoteResult struct {
	Symbol      string
	Quote       *Quote
	ErrorReason string
}

// NewQuoteResult wraps a successful quote
func NewQuoteResult(q Quote) QuoteResult {
	return QuoteResult{Symbol: q.Symbol, Quote: &q}
}

// NewQuoteError builds an error marker for a symbol the price source could not price
func NewQuoteError(symbol, reason string) QuoteResult {
	if reason == "" {
		reason = "price unavailable"
	}
	return QuoteResult{Symbol: symbol, ErrorReason: reason}
}

// IsError reports whether the result is an error marker
func (r QuoteResult) IsError() bool {
	return r.Quote == nil
}

// QuoteBook maps normalized symbols to their quote results
type QuoteBook map[string]QuoteResult

// Lookup returns the result for a symbol, normalizing the key
// A symbol absent from the book yields an error marker.
func (b QuoteBook) Lookup(symbol string) QuoteResult {
	key := NormalizeSymbol(symbol)
	if r, ok := b[key]; ok {
		return r
	}
	return NewQuoteError(key, "no quote returned for symbol")
}

// NormalizeSymbol trims and upper-cases a ticker symbol
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// UniqueSymbols returns the normalized, de-duplicated, non-empty symbols in first-seen order
func UniqueSymbols(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		key := NormalizeSymbol(s)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// PriceSource fetches quotes for a set of symbols
// Implementations never fail the whole batch for an individual symbol: every requested
// symbol is present in the returned book, either priced or as an error marker.
type PriceSource interface {
	FetchQuotes(ctx context.Context, symbols []string) QuoteBook
}

// CachedQuote is a quote as kept by a QuoteCache, stamped with the time it was fetched
type CachedQuote struct {
	Quote     Quote
	FetchedAt time.Time
}

// IsFresh reports whether the entry is younger than ttl at now
func (c CachedQuote) IsFresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(c.FetchedAt) < ttl
}

// QuoteCache stores the last known quote per symbol
// Get returns (nil, nil) on a miss.
type QuoteCache interface {
	Get(ctx context.Context, symbol string) (*CachedQuote, error)
	Set(ctx context.Context, entry CachedQuote) error
}
