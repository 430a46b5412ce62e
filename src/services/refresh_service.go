package services

import (
	"context"
	"fmt"
	"time"

	"investgame/src/database"
	"investgame/src/metrics"
	"investgame/src/models"
	"investgame/src/repositories"
	"investgame/src/schemas"
	"investgame/src/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

type RefreshServiceI interface {
	Refresh(ctx context.Context) (*schemas.RefreshResult, error)
}

type RefreshService struct {
	db           database.TxRunner
	controlRepo  repositories.RefreshControlRepository
	stockRepo    repositories.StockRepository
	snapshotRepo repositories.PriceSnapshotRepository
	quotes       QuoteFetcher
	minInterval  time.Duration
	source       string
	now          func() time.Time
}

func NewRefreshService(
	db database.TxRunner,
	controlRepo repositories.RefreshControlRepository,
	stockRepo repositories.StockRepository,
	snapshotRepo repositories.PriceSnapshotRepository,
	quotes QuoteFetcher,
	minInterval time.Duration,
	source string,
) *RefreshService {
	return &RefreshService{
		db:           db,
		controlRepo:  controlRepo,
		stockRepo:    stockRepo,
		snapshotRepo: snapshotRepo,
		quotes:       quotes,
		minInterval:  minInterval,
		source:       source,
		now:          time.Now,
	}
}

// SetClock replaces the time source.
func (s *RefreshService) SetClock(now func() time.Time) {
	s.now = now
}

// Refresh updates every stock price from the quote source unless the last
// accepted refresh window started less than minInterval ago. The control row
// stays locked for the whole attempt, so at most one refresh runs at a time
// across all instances.
func (s *RefreshService) Refresh(ctx context.Context) (*schemas.RefreshResult, error) {
	result := &schemas.RefreshResult{RunID: uuid.NewString()}
	logger := utils.LoggerFromContext(ctx).WithField("run_id", result.RunID)
	ctx = utils.WithLogger(ctx, logger)

	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		control, err := s.controlRepo.Lock(ctx, tx)
		if err != nil {
			return fmt.Errorf("locking refresh control: %w", err)
		}

		now := s.now().UTC()
		if last := control.LastRefreshedAt; last != nil && now.Sub(*last) < s.minInterval {
			result.Skipped = true
			result.LastRefreshedAt = last
			return nil
		}

		// Watermark is the window start, not the finish time.
		result.WindowStart = now
		if err := s.refreshStocks(ctx, tx, now, result); err != nil {
			return err
		}

		return s.controlRepo.SetLastRefreshedAt(ctx, now, tx)
	})
	if err != nil {
		metrics.RefreshRuns.WithLabelValues("failed").Inc()
		logger.WithError(err).Error("price refresh failed")
		return nil, err
	}

	if result.Skipped {
		metrics.RefreshRuns.WithLabelValues("skipped").Inc()
		logger.WithField("last_refreshed_at", result.LastRefreshedAt).Debug("price refresh skipped")
		return result, nil
	}

	metrics.RefreshRuns.WithLabelValues("completed").Inc()
	metrics.RefreshUpdatedStocks.Add(float64(result.Updated))
	logger.WithFields(logrus.Fields{
		"updated":      result.Updated,
		"snapshots":    result.Snapshots,
		"window_start": result.WindowStart,
	}).Info("price refresh completed")
	return result, nil
}

func (s *RefreshService) refreshStocks(ctx context.Context, tx pgx.Tx, now time.Time, result *schemas.RefreshResult) error {
	logger := utils.LoggerFromContext(ctx)

	stocks, err := s.stockRepo.GetAll(ctx, tx)
	if err != nil {
		return fmt.Errorf("loading stocks: %w", err)
	}

	for _, stock := range stocks {
		if err := ctx.Err(); err != nil {
			return err
		}

		price, ok := s.quotes.Fetch(ctx, stock.Ticker)
		if !ok {
			logger.WithField("ticker", stock.Ticker).Warn("keeping stored price, quote unavailable")
			continue
		}
		price = utils.RoundPrice(price)
		if stock.CurrentPrice.Valid && stock.CurrentPrice.Decimal.Equal(price) {
			continue
		}

		if err := s.stockRepo.UpdatePrice(ctx, stock.ID, price, now, tx); err != nil {
			return fmt.Errorf("updating price of %s: %w", stock.Ticker, err)
		}
		result.Updated++

		snapshot := &models.PriceSnapshot{
			StockID:    stock.ID,
			Price:      price,
			Source:     s.source,
			CapturedAt: now,
		}
		if err := s.snapshotRepo.Create(ctx, snapshot, tx); err != nil {
			return fmt.Errorf("recording snapshot of %s: %w", stock.Ticker, err)
		}
		result.Snapshots++
	}
	return nil
}
