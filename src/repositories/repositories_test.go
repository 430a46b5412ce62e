package repositories_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"investgame/src/database"
	"investgame/src/models"
	"investgame/src/repositories"
	"investgame/src/schemas"
	"investgame/src/services"
	"investgame/src/testutils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func createUser(t *testing.T, db *pgxpool.Pool, name, balance string) *models.User {
	t.Helper()
	u := &models.User{Name: name, PasswordHash: "hash", CashBalance: dec(balance)}
	require.NoError(t, repositories.NewUserRepository(db).Create(context.Background(), u, nil))
	return u
}

func firstStock(t *testing.T, db *pgxpool.Pool) models.Stock {
	t.Helper()
	stocks, err := repositories.NewStockRepository(db).GetAll(context.Background(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, stocks)
	return stocks[0]
}

func TestUserRepository(t *testing.T) {
	db := testutils.SetupTestDB(t)
	repo := repositories.NewUserRepository(db)
	ctx := context.Background()

	u := createUser(t, db, "alice", "200.00")
	assert.NotZero(t, u.ID)

	got, err := repo.GetByID(ctx, u.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Name)
	assert.True(t, got.CashBalance.Equal(dec("200.00")))

	_, err = repo.GetByID(ctx, u.ID+1000, nil)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	err = database.NewDB(db).WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		balance, err := repo.LockBalance(ctx, u.ID, tx)
		require.NoError(t, err)
		assert.True(t, balance.Equal(dec("200.00")))

		balance, err = repo.DebitBalance(ctx, u.ID, dec("49.99"), tx)
		require.NoError(t, err)
		assert.True(t, balance.Equal(dec("150.01")))
		return nil
	})
	require.NoError(t, err)

	got, err = repo.GetByID(ctx, u.ID, nil)
	require.NoError(t, err)
	assert.True(t, got.CashBalance.Equal(dec("150.01")))
}

func TestStockRepository(t *testing.T) {
	db := testutils.SetupTestDB(t)
	repo := repositories.NewStockRepository(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	stock := firstStock(t, db)
	assert.False(t, stock.CurrentPrice.Valid)

	t.Run("SetPriceIfNull only fills an empty price", func(t *testing.T) {
		stored, err := repo.SetPriceIfNull(ctx, stock.ID, dec("12.3456"), now)
		require.NoError(t, err)
		assert.True(t, stored)

		stored, err = repo.SetPriceIfNull(ctx, stock.ID, dec("99"), now)
		require.NoError(t, err)
		assert.False(t, stored)

		got, err := repo.GetByID(ctx, stock.ID)
		require.NoError(t, err)
		assert.True(t, got.CurrentPrice.Decimal.Equal(dec("12.3456")))
		require.NotNil(t, got.PriceUpdatedAt)
	})

	t.Run("UpdatePrice overwrites", func(t *testing.T) {
		require.NoError(t, repo.UpdatePrice(ctx, stock.ID, dec("13.00"), now, nil))
		got, err := repo.GetByID(ctx, stock.ID)
		require.NoError(t, err)
		assert.True(t, got.CurrentPrice.Decimal.Equal(dec("13.00")))

		assert.ErrorIs(t, repo.UpdatePrice(ctx, 99999, dec("1"), now, nil), repositories.ErrNotFound)
	})

	t.Run("unknown stock", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 99999)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestHoldingAndSnapshotRepositories(t *testing.T) {
	db := testutils.SetupTestDB(t)
	ctx := context.Background()
	u := createUser(t, db, "bob", "100.00")
	stock := firstStock(t, db)

	holdings := repositories.NewHoldingRepository(db)
	for _, qty := range []int{1, 2} {
		h := &models.Holding{UserID: u.ID, StockID: stock.ID, Quantity: qty, PurchasePrice: dec("10.5")}
		require.NoError(t, holdings.Create(ctx, h, nil))
		assert.NotZero(t, h.ID)
	}

	lots, err := holdings.GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, lots, 2)
	assert.Equal(t, stock.Ticker, lots[0].Ticker)
	assert.False(t, lots[0].CurrentPrice.Valid)

	snapshots := repositories.NewPriceSnapshotRepository(db)
	snap := &models.PriceSnapshot{StockID: stock.ID, Price: dec("10.75"), Source: "yahoo", CapturedAt: time.Now()}
	require.NoError(t, snapshots.Create(ctx, snap, nil))
	got, err := snapshots.GetByStockID(ctx, stock.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Price.Equal(dec("10.75")))
}

func TestRefreshControlRepository(t *testing.T) {
	db := testutils.SetupTestDB(t)
	repo := repositories.NewRefreshControlRepository(db)
	ctx := context.Background()
	txr := database.NewDB(db)

	// A missing row is recreated by Lock.
	_, err := db.Exec(ctx, "DELETE FROM price_refresh_control")
	require.NoError(t, err)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	err = txr.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		rc, err := repo.Lock(ctx, tx)
		require.NoError(t, err)
		assert.Nil(t, rc.LastRefreshedAt)
		return repo.SetLastRefreshedAt(ctx, at, tx)
	})
	require.NoError(t, err)

	err = txr.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		rc, err := repo.Lock(ctx, tx)
		require.NoError(t, err)
		require.NotNil(t, rc.LastRefreshedAt)
		assert.True(t, at.Equal(*rc.LastRefreshedAt))
		return nil
	})
	require.NoError(t, err)

	var rows int
	require.NoError(t, db.QueryRow(ctx, "SELECT count(*) FROM price_refresh_control").Scan(&rows))
	assert.Equal(t, 1, rows)

	_, err = db.Exec(ctx, "INSERT INTO price_refresh_control (id) VALUES (FALSE)")
	assert.Error(t, err)
}

func TestLeaderboardRepository(t *testing.T) {
	db := testutils.SetupTestDB(t)
	ctx := context.Background()
	stocks := repositories.NewStockRepository(db)
	holdings := repositories.NewHoldingRepository(db)

	all, err := stocks.GetAll(ctx, nil)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(all), 2)
	priced, unpriced := all[0], all[1]
	require.NoError(t, stocks.UpdatePrice(ctx, priced.ID, dec("2.5"), time.Now(), nil))

	alice := createUser(t, db, "alice", "10.00")
	bob := createUser(t, db, "bob", "12.00")
	require.NoError(t, holdings.Create(ctx, &models.Holding{UserID: alice.ID, StockID: priced.ID, Quantity: 4, PurchasePrice: dec("2")}, nil))
	require.NoError(t, holdings.Create(ctx, &models.Holding{UserID: bob.ID, StockID: unpriced.ID, Quantity: 100, PurchasePrice: dec("1")}, nil))

	entries, err := repositories.NewLeaderboardRepository(db).GetStandings(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, alice.ID, entries[0].UserID)
	assert.True(t, entries[0].Total.Equal(dec("20.00")))
	assert.Equal(t, bob.ID, entries[1].UserID)
	assert.True(t, entries[1].StockValue.IsZero())
	assert.True(t, entries[1].Total.Equal(dec("12.00")))
}

func TestConcurrentPurchasesAgainstPostgres(t *testing.T) {
	db := testutils.SetupTestDB(t)
	ctx := context.Background()

	stock := firstStock(t, db)
	require.NoError(t, repositories.NewStockRepository(db).UpdatePrice(ctx, stock.ID, dec("60.00"), time.Now(), nil))
	u := createUser(t, db, "carol", "100.00")

	userRepo := repositories.NewUserRepository(db)
	prices := services.NewPriceService(repositories.NewStockRepository(db), testutils.NewFakeQuoteFetcher())
	svc := services.NewPurchaseService(database.NewDB(db), userRepo, repositories.NewHoldingRepository(db), prices)

	const buyers = 5
	var wg sync.WaitGroup
	errs := make(chan error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Buy(ctx, schemas.PurchaseRequest{UserID: u.ID, StockID: stock.ID, Quantity: 1})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, services.ErrInsufficientFunds)
	}
	assert.Equal(t, 1, succeeded)

	got, err := userRepo.GetByID(ctx, u.ID, nil)
	require.NoError(t, err)
	assert.True(t, got.CashBalance.Equal(dec("40.00")))
	lots, err := repositories.NewHoldingRepository(db).GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, lots, 1)
}

func TestRefreshAgainstPostgres(t *testing.T) {
	db := testutils.SetupTestDB(t)
	ctx := context.Background()

	all, err := repositories.NewStockRepository(db).GetAll(ctx, nil)
	require.NoError(t, err)
	quotes := testutils.NewFakeQuoteFetcher()
	quotes.SetPrice(all[0].Ticker, "101.5")

	svc := services.NewRefreshService(
		database.NewDB(db),
		repositories.NewRefreshControlRepository(db),
		repositories.NewStockRepository(db),
		repositories.NewPriceSnapshotRepository(db),
		quotes,
		15*time.Minute,
		"yahoo",
	)

	var wg sync.WaitGroup
	results := make(chan *schemas.RefreshResult, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.Refresh(ctx)
			if assert.NoError(t, err) {
				results <- result
			}
		}()
	}
	wg.Wait()
	close(results)

	ran := 0
	for r := range results {
		if !r.Skipped {
			ran++
			assert.Equal(t, 1, r.Updated)
			assert.Equal(t, 1, r.Snapshots)
		}
	}
	assert.Equal(t, 1, ran)
	assert.Equal(t, 1, quotes.Calls(all[0].Ticker))

	snaps, err := repositories.NewPriceSnapshotRepository(db).GetByStockID(ctx, all[0].ID)
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}
