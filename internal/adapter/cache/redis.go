package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/simaogato/wealthflow-valuation/internal/domain"
)

const quoteKeyPrefix = "quote:"

// NewRedisClient connects to redis and pings it
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return rdb, nil
}

// quoteEntry is the msgpack representation of a cached quote
// Decimals are kept as strings so no precision is lost.
type quoteEntry struct {
	Symbol    string `msgpack:"s"`
	Price     string `msgpack:"p"`
	Currency  string `msgpack:"c"`
	Timestamp int64  `msgpack:"t"`
	FetchedAt int64  `msgpack:"f"`
}

// QuoteCache stores the last known quote per symbol in redis
// Entries live for the stale retention period; freshness is decided by the reader from FetchedAt.
type QuoteCache struct {
	redis    *redis.Client
	staleTTL time.Duration
	log      zerolog.Logger
}

// NewQuoteCache creates a new redis backed quote cache
func NewQuoteCache(rdb *redis.Client, staleTTL time.Duration, log zerolog.Logger) *QuoteCache {
	return &QuoteCache{
		redis:    rdb,
		staleTTL: staleTTL,
		log:      log.With().Str("cache", "quote").Logger(),
	}
}

// QuoteKey returns the redis key of a symbol
func QuoteKey(symbol string) string {
	return quoteKeyPrefix + domain.NormalizeSymbol(symbol)
}

// Get returns the cached entry of a symbol, or nil on a miss
func (c *QuoteCache) Get(ctx context.Context, symbol string) (*domain.CachedQuote, error) {
	raw, err := c.redis.Get(ctx, QuoteKey(symbol)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read quote %s: %w", symbol, err)
	}

	entry, err := decodeQuote(raw)
	if err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("dropping undecodable cache entry")
		return nil, nil
	}

	return entry, nil
}

// Set stores an entry under the normalized symbol key
func (c *QuoteCache) Set(ctx context.Context, entry domain.CachedQuote) error {
	raw, err := encodeQuote(entry)
	if err != nil {
		return err
	}

	if err := c.redis.Set(ctx, QuoteKey(entry.Quote.Symbol), raw, c.staleTTL).Err(); err != nil {
		return fmt.Errorf("failed to write quote %s: %w", entry.Quote.Symbol, err)
	}
	return nil
}

func encodeQuote(entry domain.CachedQuote) ([]byte, error) {
	raw, err := msgpack.Marshal(quoteEntry{
		Symbol:    entry.Quote.Symbol,
		Price:     entry.Quote.Price.String(),
		Currency:  entry.Quote.Currency.String(),
		Timestamp: entry.Quote.Timestamp.UnixMilli(),
		FetchedAt: entry.FetchedAt.UnixMilli(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode quote %s: %w", entry.Quote.Symbol, err)
	}
	return raw, nil
}

func decodeQuote(raw []byte) (*domain.CachedQuote, error) {
	var e quoteEntry
	if err := msgpack.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("failed to decode quote: %w", err)
	}

	price, err := decimal.NewFromString(e.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid cached price %q: %w", e.Price, err)
	}

	return &domain.CachedQuote{
		Quote: domain.Quote{
			Symbol:    e.Symbol,
			Price:     price,
			Currency:  domain.Currency(e.Currency),
			Timestamp: time.UnixMilli(e.Timestamp).UTC(),
		},
		FetchedAt: time.UnixMilli(e.FetchedAt).UTC(),
	}, nil
}
