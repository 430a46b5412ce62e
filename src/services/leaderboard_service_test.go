package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"investgame/src/schemas"
	"investgame/src/services"
	"investgame/src/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRefresher struct {
	calls  int
	result *schemas.RefreshResult
	err    error
}

func (s *stubRefresher) Refresh(context.Context) (*schemas.RefreshResult, error) {
	s.calls++
	return s.result, s.err
}

func TestGetLeaderboard(t *testing.T) {
	ctx := context.Background()
	store := testutils.NewStore()
	alice := store.AddUser("alice", "100.00")
	bob := store.AddUser("bob", "500.00")
	carol := store.AddUser("carol", "10.00")
	priced := store.AddStock("AAA", "12.50")
	unpriced := store.AddStock("BBB", "")

	store.AddHolding(alice.ID, priced.ID, 4, "10.00")
	store.AddHolding(alice.ID, priced.ID, 2, "11.00")
	store.AddHolding(carol.ID, unpriced.ID, 1000, "1.00")

	svc := services.NewLeaderboardService(store.Leaderboard(), &stubRefresher{}, false)
	entries, err := svc.GetLeaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, bob.ID, entries[0].UserID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.True(t, entries[0].Total.Equal(dec("500.00")))

	assert.Equal(t, alice.ID, entries[1].UserID)
	assert.True(t, entries[1].StockValue.Equal(dec("75.00")))
	assert.True(t, entries[1].Total.Equal(dec("175.00")))

	// Lots of an unpriced stock are worth nothing.
	assert.Equal(t, carol.ID, entries[2].UserID)
	assert.True(t, entries[2].StockValue.IsZero())
	assert.True(t, entries[2].Total.Equal(dec("10.00")))
}

func TestGetOverview(t *testing.T) {
	ctx := context.Background()

	t.Run("refresh runs before the leaderboard is read", func(t *testing.T) {
		store := testutils.NewStore()
		store.AddUser("alice", "1.00")
		refresher := &stubRefresher{result: &schemas.RefreshResult{Skipped: true, WindowStart: time.Time{}}}

		overview, err := services.NewLeaderboardService(store.Leaderboard(), refresher, true).GetOverview(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, refresher.calls)
		require.NotNil(t, overview.Refresh)
		assert.True(t, overview.Refresh.Skipped)
		assert.Len(t, overview.Leaderboard, 1)
	})

	t.Run("refresh failure still serves the leaderboard", func(t *testing.T) {
		store := testutils.NewStore()
		store.AddUser("alice", "1.00")
		refresher := &stubRefresher{err: errors.New("db down")}

		overview, err := services.NewLeaderboardService(store.Leaderboard(), refresher, true).GetOverview(ctx)
		require.NoError(t, err)
		assert.Nil(t, overview.Refresh)
		assert.Len(t, overview.Leaderboard, 1)
	})

	t.Run("refresh can be turned off", func(t *testing.T) {
		store := testutils.NewStore()
		refresher := &stubRefresher{}

		_, err := services.NewLeaderboardService(store.Leaderboard(), refresher, false).GetOverview(ctx)
		require.NoError(t, err)
		assert.Zero(t, refresher.calls)
	})
}
