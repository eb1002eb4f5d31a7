package ratesource

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/simaogato/wealthflow-valuation/internal/domain"
)

const latestPath = "/latest/{currency}"

// Config holds the settings of the exchange rate API client
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	Debug      bool
}

// Client fetches ILS rates for USD, EUR and GBP from an exchangerate-api.com style endpoint
type Client struct {
	client *resty.Client
	log    zerolog.Logger
	now    func() time.Time
}

// New creates a new exchange rate client
func New(cfg Config, log zerolog.Logger) *Client {
	client := resty.New().
		SetDebug(cfg.Debug).
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetHeader("Accept", "application/json")

	return &Client{
		client: client,
		log:    log.With().Str("client", "exchangerate-api").Logger(),
		now:    time.Now,
	}
}

type latestResponse struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// FetchExchangeRates fetches the three rates concurrently
// The set is all-or-nothing: any failed or non-positive rate yields nil.
func (c *Client) FetchExchangeRates(ctx context.Context) *domain.ExchangeRateSet {
	var usd, eur, gbp decimal.Decimal

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		usd, err = c.fetchRate(gctx, domain.CurrencyUSD)
		return err
	})
	g.Go(func() (err error) {
		eur, err = c.fetchRate(gctx, domain.CurrencyEUR)
		return err
	})
	g.Go(func() (err error) {
		gbp, err = c.fetchRate(gctx, domain.CurrencyGBP)
		return err
	})

	if err := g.Wait(); err != nil {
		c.log.Warn().Err(err).Msg("exchange rates unavailable")
		return nil
	}

	rates := &domain.ExchangeRateSet{USD: usd, EUR: eur, GBP: gbp, FetchedAt: c.now()}
	if err := rates.Validate(); err != nil {
		c.log.Warn().Err(err).Msg("discarding exchange rates")
		return nil
	}

	c.log.Debug().
		Str("usd", usd.String()).
		Str("eur", eur.String()).
		Str("gbp", gbp.String()).
		Msg("fetched exchange rates")

	return rates
}

func (c *Client) fetchRate(ctx context.Context, from domain.Currency) (decimal.Decimal, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("currency", from.String()).
		Get(latestPath)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to request %s rate: %w", from, err)
	}
	if resp.IsError() {
		return decimal.Zero, fmt.Errorf("%s rate request returned status %d", from, resp.StatusCode())
	}

	var body latestResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode %s rates: %w", from, err)
	}

	rate, ok := body.Rates[domain.PivotCurrency.String()]
	if !ok {
		return decimal.Zero, fmt.Errorf("rate not found for %s->%s", from, domain.PivotCurrency)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("non-positive rate %s for %s", rate, from)
	}

	return rate, nil
}
