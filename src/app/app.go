package app

import (
	"context"
	"fmt"

	"investgame/src/clients/yahoo"
	"investgame/src/config"
	"investgame/src/database"
	"investgame/src/repositories"
	"investgame/src/services"
	redis_utils "investgame/src/utils/redis"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// App holds the services shared by the API and the worker.
type App struct {
	Pool  *pgxpool.Pool
	Redis *redis_utils.RedisHandler

	Users       *services.UserService
	Stocks      *services.StockService
	Prices      *services.PriceService
	Purchases   *services.PurchaseService
	Leaderboard *services.LeaderboardService
	Refresher   *services.RefreshService
}

// New connects to the database (and Redis when enabled) and builds every service.
func New(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*App, error) {
	startingBalance, err := decimal.NewFromString(cfg.Game.StartingBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid starting balance: %w", err)
	}

	pool, err := database.SetupDB(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &App{Pool: pool}

	var quotes services.QuoteFetcher = services.NewQuoteService(yahoo.NewClient(cfg))
	if cfg.Databases.Redis.Enabled {
		handler, err := redis_utils.NewRedisHandler(ctx, cfg)
		if err != nil {
			// Quotes still work without the cache.
			logger.WithError(err).Warn("Redis unavailable, quote cache disabled")
		} else {
			a.Redis = handler
			quotes = services.NewCachedQuoteFetcher(quotes, handler, cfg.Databases.Redis.QuoteTTL)
		}
	}

	db := database.NewDB(pool)
	userRepo := repositories.NewUserRepository(pool)
	stockRepo := repositories.NewStockRepository(pool)
	holdingRepo := repositories.NewHoldingRepository(pool)

	a.Users = services.NewUserService(userRepo, holdingRepo, startingBalance, cfg.Auth.FailedLoginDelay)
	a.Stocks = services.NewStockService(stockRepo)
	a.Prices = services.NewPriceService(stockRepo, quotes)
	a.Purchases = services.NewPurchaseService(db, userRepo, holdingRepo, a.Prices)
	a.Refresher = services.NewRefreshService(
		db,
		repositories.NewRefreshControlRepository(pool),
		stockRepo,
		repositories.NewPriceSnapshotRepository(pool),
		quotes,
		cfg.Game.MinRefreshInterval(),
		cfg.Game.SnapshotSource,
	)
	a.Leaderboard = services.NewLeaderboardService(
		repositories.NewLeaderboardRepository(pool),
		a.Refresher,
		cfg.Game.RefreshOnOverview,
	)
	return a, nil
}

func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	a.Pool.Close()
}
