package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"investgame/src/clients/yahoo"
	"investgame/src/services"
	"investgame/src/testutils"
	redis_utils "investgame/src/utils/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeYahoo struct {
	chart      *yahoo.ChartResponse
	chartErr   error
	quote      *yahoo.QuoteResponse
	quoteErr   error
	quoteCalls int
}

func (f *fakeYahoo) GetChart(_ context.Context, _ string) (*yahoo.ChartResponse, error) {
	return f.chart, f.chartErr
}

func (f *fakeYahoo) GetQuote(_ context.Context, _ string) (*yahoo.QuoteResponse, error) {
	f.quoteCalls++
	return f.quote, f.quoteErr
}

func chartWithPrice(price string) *yahoo.ChartResponse {
	resp := &yahoo.ChartResponse{}
	meta := yahoo.ChartMeta{Symbol: "VWS.CO"}
	if price != "" {
		meta.RegularMarketPrice = decimal.NewNullDecimal(decimal.RequireFromString(price))
	}
	resp.Chart.Result = []yahoo.ChartResult{{Meta: meta}}
	return resp
}

func quoteWithPrice(symbol, price string) *yahoo.QuoteResponse {
	resp := &yahoo.QuoteResponse{}
	resp.QuoteResponse.Result = []yahoo.Quote{{
		Symbol:             symbol,
		RegularMarketPrice: decimal.NewNullDecimal(decimal.RequireFromString(price)),
	}}
	return resp
}

func TestQuoteServiceFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("chart price is used when present", func(t *testing.T) {
		client := &fakeYahoo{chart: chartWithPrice("101.25")}
		price, ok := services.NewQuoteService(client).Fetch(ctx, "VWS.CO")
		require.True(t, ok)
		assert.Equal(t, "101.25", price.String())
		assert.Zero(t, client.quoteCalls)
	})

	t.Run("price is scaled to four decimals", func(t *testing.T) {
		client := &fakeYahoo{chart: chartWithPrice("173.1999969482422")}
		price, ok := services.NewQuoteService(client).Fetch(ctx, "VWS.CO")
		require.True(t, ok)
		assert.Equal(t, "173.2", price.String())
	})

	t.Run("price rounding to zero is unavailable", func(t *testing.T) {
		client := &fakeYahoo{
			chart: chartWithPrice("0.00004"),
			quote: quoteWithPrice("VWS.CO", "0.00001"),
		}
		_, ok := services.NewQuoteService(client).Fetch(ctx, "VWS.CO")
		assert.False(t, ok)
	})

	t.Run("falls back to the quote endpoint", func(t *testing.T) {
		client := &fakeYahoo{
			chartErr: errors.New("boom"),
			quote:    quoteWithPrice("VWS.CO", "99.5"),
		}
		price, ok := services.NewQuoteService(client).Fetch(ctx, "VWS.CO")
		require.True(t, ok)
		assert.Equal(t, "99.5", price.String())
		assert.Equal(t, 1, client.quoteCalls)
	})

	t.Run("missing chart price falls back", func(t *testing.T) {
		client := &fakeYahoo{
			chart: chartWithPrice(""),
			quote: quoteWithPrice("vws.co", "98"),
		}
		price, ok := services.NewQuoteService(client).Fetch(ctx, "VWS.CO")
		require.True(t, ok)
		assert.Equal(t, "98", price.String())
	})

	t.Run("both paths failing is unavailable", func(t *testing.T) {
		client := &fakeYahoo{
			chartErr: errors.New("timeout"),
			quoteErr: errors.New("timeout"),
		}
		_, ok := services.NewQuoteService(client).Fetch(ctx, "VWS.CO")
		assert.False(t, ok)
	})

	t.Run("zero price is unavailable", func(t *testing.T) {
		client := &fakeYahoo{
			chart: chartWithPrice("0"),
			quote: quoteWithPrice("OTHER", "12"),
		}
		_, ok := services.NewQuoteService(client).Fetch(ctx, "VWS.CO")
		assert.False(t, ok)
	})
}

func newRedisCache(t *testing.T) (*redis_utils.RedisHandler, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	handler, err := redis_utils.NewRedisHandlerFromClient(context.Background(), redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = handler.Close() })
	return handler, mr
}

func TestCachedQuoteFetcher(t *testing.T) {
	ctx := context.Background()

	t.Run("miss goes upstream and writes back", func(t *testing.T) {
		cache, mr := newRedisCache(t)
		upstream := testutils.NewFakeQuoteFetcher()
		upstream.SetPrice("DSV.CO", "1452.50")
		fetcher := services.NewCachedQuoteFetcher(upstream, cache, time.Minute)

		price, ok := fetcher.Fetch(ctx, "DSV.CO")
		require.True(t, ok)
		assert.True(t, price.Equal(decimal.RequireFromString("1452.50")))
		assert.True(t, mr.Exists("quote:DSV.CO"))
		assert.Equal(t, time.Minute, mr.TTL("quote:DSV.CO"))

		price, ok = fetcher.Fetch(ctx, "DSV.CO")
		require.True(t, ok)
		assert.True(t, price.Equal(decimal.RequireFromString("1452.50")))
		assert.Equal(t, 1, upstream.Calls("DSV.CO"))
	})

	t.Run("expired entries are fetched again", func(t *testing.T) {
		cache, mr := newRedisCache(t)
		upstream := testutils.NewFakeQuoteFetcher()
		upstream.SetPrice("DSV.CO", "10")
		fetcher := services.NewCachedQuoteFetcher(upstream, cache, time.Minute)

		_, ok := fetcher.Fetch(ctx, "DSV.CO")
		require.True(t, ok)
		mr.FastForward(2 * time.Minute)
		upstream.SetPrice("DSV.CO", "11")

		price, ok := fetcher.Fetch(ctx, "DSV.CO")
		require.True(t, ok)
		assert.Equal(t, "11", price.String())
		assert.Equal(t, 2, upstream.Calls("DSV.CO"))
	})

	t.Run("unavailable prices are not cached", func(t *testing.T) {
		cache, mr := newRedisCache(t)
		upstream := testutils.NewFakeQuoteFetcher()
		fetcher := services.NewCachedQuoteFetcher(upstream, cache, time.Minute)

		_, ok := fetcher.Fetch(ctx, "GMAB.CO")
		assert.False(t, ok)
		assert.False(t, mr.Exists("quote:GMAB.CO"))
	})

	t.Run("cache outage falls through to upstream", func(t *testing.T) {
		cache, mr := newRedisCache(t)
		upstream := testutils.NewFakeQuoteFetcher()
		upstream.SetPrice("DSV.CO", "7.5")
		fetcher := services.NewCachedQuoteFetcher(upstream, cache, time.Minute)
		mr.Close()

		price, ok := fetcher.Fetch(ctx, "DSV.CO")
		require.True(t, ok)
		assert.Equal(t, "7.5", price.String())
	})
}
