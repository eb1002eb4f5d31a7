package pricesource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/simaogato/wealthflow-valuation/internal/domain"
)

const chartPath = "/v8/finance/chart/{symbol}"

// Config holds the settings of the quote API client
type Config struct {
	BaseURL        string
	Timeout        time.Duration // per symbol
	MaxConcurrency int
	RetryCount     int
	Debug          bool
	FreshTTL       time.Duration // cache entries younger than this skip the live fetch
}

// Client fetches quotes from a Yahoo-style chart API, backed by an optional QuoteCache
type Client struct {
	client *resty.Client
	cache  domain.QuoteCache
	cfg    Config
	log    zerolog.Logger
	now    func() time.Time
}

// New creates a new quote API client
// cache may be nil, in which case every symbol is fetched live and failures have no fallback.
func New(cfg Config, cache domain.QuoteCache, log zerolog.Logger) *Client {
	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = 1
	}
	client := resty.New().
		SetDebug(cfg.Debug).
		SetBaseURL(cfg.BaseURL).
		SetRetryCount(cfg.RetryCount).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "wealthflow-valuation/1.0")

	return &Client{
		client: client,
		cache:  cache,
		cfg:    cfg,
		log:    log.With().Str("client", "pricesource").Logger(),
		now:    time.Now,
	}
}

// FetchQuotes returns a result for every unique, non-empty requested symbol
// Logic:
// 1. A fresh cache entry is returned as is, marked FromCache
// 2. Otherwise the quote is fetched live and written back to the cache
// 3. A failed live fetch falls back to a stale cache entry, then to an error marker
func (c *Client) FetchQuotes(ctx context.Context, symbols []string) domain.QuoteBook {
	unique := domain.UniqueSymbols(symbols)
	book := make(domain.QuoteBook, len(unique))
	if len(unique) == 0 {
		return book
	}

	results := make([]domain.QuoteResult, len(unique))
	var g errgroup.Group
	g.SetLimit(c.cfg.MaxConcurrency)
	for i, symbol := range unique {
		g.Go(func() error {
			results[i] = c.fetchOne(ctx, symbol)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		book[r.Symbol] = r
	}

	c.log.Debug().Int("symbols", len(unique)).Msg("quotes fetched")
	return book
}

func (c *Client) fetchOne(ctx context.Context, symbol string) domain.QuoteResult {
	var cached *domain.CachedQuote
	if c.cache != nil {
		entry, err := c.cache.Get(ctx, symbol)
		if err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("quote cache read failed")
		}
		cached = entry
		if cached != nil && cached.IsFresh(c.now(), c.cfg.FreshTTL) {
			return fromCache(symbol, *cached)
		}
	}

	q, err := c.fetchLive(ctx, symbol)
	if err == nil {
		if c.cache != nil {
			if err := c.cache.Set(ctx, domain.CachedQuote{Quote: q, FetchedAt: c.now()}); err != nil {
				c.log.Warn().Err(err).Str("symbol", symbol).Msg("quote cache write failed")
			}
		}
		return domain.NewQuoteResult(q)
	}

	if cached != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Time("fetched_at", cached.FetchedAt).Msg("serving stale quote")
		return fromCache(symbol, *cached)
	}

	c.log.Warn().Err(err).Str("symbol", symbol).Msg("quote unavailable")
	return domain.NewQuoteError(symbol, err.Error())
}

func fromCache(symbol string, entry domain.CachedQuote) domain.QuoteResult {
	q := entry.Quote
	q.Symbol = symbol
	q.FromCache = true
	return domain.NewQuoteResult(q)
}

func (c *Client) fetchLive(ctx context.Context, symbol string) (domain.Quote, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.client.R().
		SetContext(reqCtx).
		SetPathParam("symbol", symbol).
		SetQueryParams(map[string]string{
			"interval": "1d",
			"range":    "1d",
		}).
		Get(chartPath)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("failed to request quote: %w", err)
	}
	if resp.IsError() {
		return domain.Quote{}, fmt.Errorf("quote request returned status %d", resp.StatusCode())
	}

	var chart chartResponse
	if err := json.Unmarshal(resp.Body(), &chart); err != nil {
		return domain.Quote{}, fmt.Errorf("failed to decode quote response: %w", err)
	}

	return c.parseChart(symbol, chart)
}

func (c *Client) parseChart(symbol string, chart chartResponse) (domain.Quote, error) {
	if chart.Chart.Error != nil && chart.Chart.Error.Description != "" {
		return domain.Quote{}, errors.New(chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return domain.Quote{}, errors.New("empty chart result")
	}

	meta := chart.Chart.Result[0].Meta
	if meta.RegularMarketPrice == nil {
		return domain.Quote{}, errors.New("missing market price")
	}
	if meta.RegularMarketPrice.IsNegative() {
		return domain.Quote{}, fmt.Errorf("negative market price %s", meta.RegularMarketPrice)
	}

	currency, price := NormalizeQuoteCurrency(meta.Currency, *meta.RegularMarketPrice)

	ts := c.now()
	if meta.RegularMarketTime > 0 {
		ts = time.Unix(meta.RegularMarketTime, 0).UTC()
	}

	return domain.Quote{
		Symbol:    symbol,
		Price:     price,
		Currency:  currency,
		Timestamp: ts,
	}, nil
}

var hundred = decimal.NewFromInt(100)

// NormalizeQuoteCurrency maps sub-unit listings to their main currency
// GBp/GBX (pence) become GBP and ILA (agorot) becomes ILS, with the price divided by 100.
// A missing currency is treated as USD.
func NormalizeQuoteCurrency(code string, price decimal.Decimal) (domain.Currency, decimal.Decimal) {
	switch code {
	case "GBp", "GBX", "GBx":
		return domain.CurrencyGBP, price.Div(hundred)
	case "ILA", "ILa":
		return domain.CurrencyILS, price.Div(hundred)
	case "":
		return domain.CurrencyUSD, price
	}
	currency, _ := domain.ParseCurrency(code)
	return currency, price
}
