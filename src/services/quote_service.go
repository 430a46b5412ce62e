package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"investgame/src/clients/yahoo"
	"investgame/src/metrics"
	"investgame/src/utils"
	redis_utils "investgame/src/utils/redis"

	"github.com/shopspring/decimal"
)

// QuoteFetcher returns a best-effort current price for a ticker. The boolean
// is false when no price could be obtained; failures never surface as errors.
type QuoteFetcher interface {
	Fetch(ctx context.Context, ticker string) (decimal.Decimal, bool)
}

type QuoteService struct {
	client yahoo.YahooServiceClientI
}

func NewQuoteService(client yahoo.YahooServiceClientI) *QuoteService {
	return &QuoteService{client: client}
}

// Fetch tries the chart endpoint first and falls back to the detailed quote.
func (s *QuoteService) Fetch(ctx context.Context, ticker string) (decimal.Decimal, bool) {
	logger := utils.LoggerFromContext(ctx).WithField("ticker", ticker)

	chart, err := s.client.GetChart(ctx, ticker)
	if err != nil {
		logger.WithError(err).Debug("chart lookup failed")
	} else if price, ok := chartPrice(chart); ok {
		metrics.QuoteFetches.WithLabelValues("chart", "ok").Inc()
		return price, true
	}
	metrics.QuoteFetches.WithLabelValues("chart", "unavailable").Inc()

	quote, err := s.client.GetQuote(ctx, ticker)
	if err != nil {
		logger.WithError(err).Debug("quote lookup failed")
	} else if price, ok := quotePrice(quote, ticker); ok {
		metrics.QuoteFetches.WithLabelValues("quote", "ok").Inc()
		return price, true
	}
	metrics.QuoteFetches.WithLabelValues("quote", "unavailable").Inc()

	logger.Warn("no price available")
	return decimal.Zero, false
}

func chartPrice(resp *yahoo.ChartResponse) (decimal.Decimal, bool) {
	if resp == nil || len(resp.Chart.Result) == 0 {
		return decimal.Zero, false
	}
	return usablePrice(resp.Chart.Result[0].Meta.RegularMarketPrice)
}

func quotePrice(resp *yahoo.QuoteResponse, ticker string) (decimal.Decimal, bool) {
	if resp == nil {
		return decimal.Zero, false
	}
	for _, q := range resp.QuoteResponse.Result {
		if strings.EqualFold(q.Symbol, ticker) {
			return usablePrice(q.RegularMarketPrice)
		}
	}
	return decimal.Zero, false
}

// usablePrice scales an upstream price to the stored precision. Prices that
// round to zero are unavailable.
func usablePrice(p decimal.NullDecimal) (decimal.Decimal, bool) {
	if !p.Valid {
		return decimal.Zero, false
	}
	price := utils.RoundPrice(p.Decimal)
	if !price.IsPositive() {
		return decimal.Zero, false
	}
	return price, true
}

// QuoteCache is the subset of the redis handler the cached fetcher needs.
type QuoteCache interface {
	Get(ctx context.Context, key string, result interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// CachedQuoteFetcher serves recent prices from a short-lived cache and writes
// upstream successes back to it. Cache failures fall through to the upstream.
type CachedQuoteFetcher struct {
	next  QuoteFetcher
	cache QuoteCache
	ttl   time.Duration
}

func NewCachedQuoteFetcher(next QuoteFetcher, cache QuoteCache, ttl time.Duration) *CachedQuoteFetcher {
	return &CachedQuoteFetcher{next: next, cache: cache, ttl: ttl}
}

func quoteCacheKey(ticker string) string {
	return "quote:" + strings.ToUpper(ticker)
}

func (f *CachedQuoteFetcher) Fetch(ctx context.Context, ticker string) (decimal.Decimal, bool) {
	logger := utils.LoggerFromContext(ctx).WithField("ticker", ticker)
	key := quoteCacheKey(ticker)

	var cached decimal.Decimal
	err := f.cache.Get(ctx, key, &cached)
	switch {
	case err == nil:
		metrics.QuoteFetches.WithLabelValues("cache", "hit").Inc()
		return cached, true
	case errors.Is(err, redis_utils.ErrKeyNotFound):
		metrics.QuoteFetches.WithLabelValues("cache", "miss").Inc()
	default:
		metrics.QuoteFetches.WithLabelValues("cache", "error").Inc()
		logger.WithError(err).Warn("quote cache read failed")
	}

	price, ok := f.next.Fetch(ctx, ticker)
	if !ok {
		return decimal.Zero, false
	}
	if err := f.cache.Set(ctx, key, price, f.ttl); err != nil {
		logger.WithError(err).Warn("quote cache write failed")
	}
	return price, true
}
