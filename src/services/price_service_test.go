package services_test

import (
	"context"
	"testing"

	"investgame/src/services"
	"investgame/src/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsurePrice(t *testing.T) {
	ctx := context.Background()

	t.Run("stored price is returned without a quote call", func(t *testing.T) {
		store := testutils.NewStore()
		quotes := testutils.NewFakeQuoteFetcher()
		stock := store.AddStock("AAA", "8.80")
		quotes.SetPrice("AAA", "9.90")

		price, ok, err := services.NewPriceService(store.Stocks(), quotes).EnsurePrice(ctx, stock.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "8.8", price.String())
		assert.Zero(t, quotes.TotalCalls())
	})

	t.Run("missing price is fetched once and stored without a snapshot", func(t *testing.T) {
		store := testutils.NewStore()
		quotes := testutils.NewFakeQuoteFetcher()
		stock := store.AddStock("AAA", "")
		quotes.SetPrice("AAA", "3.30")
		clock := testutils.NewFakeClock(t0)
		svc := services.NewPriceService(store.Stocks(), quotes)
		svc.SetClock(clock.Now)

		price, ok, err := svc.EnsurePrice(ctx, stock.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "3.3", price.String())

		stored := store.Stock(stock.ID)
		assert.True(t, stored.CurrentPrice.Valid)
		require.NotNil(t, stored.PriceUpdatedAt)
		assert.Equal(t, t0, *stored.PriceUpdatedAt)
		assert.Empty(t, store.AllSnapshots())
		assert.Equal(t, 1, quotes.Calls("AAA"))
	})

	t.Run("unavailable quote leaves the price empty", func(t *testing.T) {
		store := testutils.NewStore()
		stock := store.AddStock("AAA", "")

		_, ok, err := services.NewPriceService(store.Stocks(), testutils.NewFakeQuoteFetcher()).EnsurePrice(ctx, stock.ID)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.False(t, store.Stock(stock.ID).CurrentPrice.Valid)
	})

	t.Run("unknown stock", func(t *testing.T) {
		store := testutils.NewStore()
		_, _, err := services.NewPriceService(store.Stocks(), testutils.NewFakeQuoteFetcher()).EnsurePrice(ctx, 42)
		assert.ErrorIs(t, err, services.ErrStockNotFound)
	})

	t.Run("a price written by a refresh during the fetch wins", func(t *testing.T) {
		store := testutils.NewStore()
		quotes := testutils.NewFakeQuoteFetcher()
		stock := store.AddStock("AAA", "")
		quotes.SetPrice("AAA", "5.00")
		// A batch refresh lands while the on-demand quote is in flight.
		quotes.OnFetch = func(string) {
			require.NoError(t, store.Stocks().UpdatePrice(ctx, stock.ID, dec("5.25"), t0, nil))
		}

		price, ok, err := services.NewPriceService(store.Stocks(), quotes).EnsurePrice(ctx, stock.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, price.Equal(dec("5.25")))
		assert.True(t, store.Stock(stock.ID).CurrentPrice.Decimal.Equal(dec("5.25")))
	})
}
