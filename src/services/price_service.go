package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"investgame/src/repositories"
	"investgame/src/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type PriceServiceI interface {
	EnsurePrice(ctx context.Context, stockID int) (decimal.Decimal, bool, error)
}

type PriceService struct {
	stockRepo repositories.StockRepository
	quotes    QuoteFetcher
	now       func() time.Time
}

func NewPriceService(stockRepo repositories.StockRepository, quotes QuoteFetcher) *PriceService {
	return &PriceService{
		stockRepo: stockRepo,
		quotes:    quotes,
		now:       time.Now,
	}
}

// SetClock replaces the time source.
func (s *PriceService) SetClock(now func() time.Time) {
	s.now = now
}

// EnsurePrice returns the stored price of a stock, backfilling it from the
// quote source when the stock has never been priced. A backfill only lands
// while the stored price is still empty, so a concurrent batch refresh wins.
func (s *PriceService) EnsurePrice(ctx context.Context, stockID int) (decimal.Decimal, bool, error) {
	stock, err := s.stockRepo.GetByID(ctx, stockID)
	if errors.Is(err, repositories.ErrNotFound) {
		return decimal.Zero, false, ErrStockNotFound
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("loading stock %d: %w", stockID, err)
	}
	if stock.CurrentPrice.Valid {
		return stock.CurrentPrice.Decimal, true, nil
	}

	price, ok := s.quotes.Fetch(ctx, stock.Ticker)
	if !ok {
		return decimal.Zero, false, nil
	}
	price = utils.RoundPrice(price)

	stored, err := s.stockRepo.SetPriceIfNull(ctx, stockID, price, s.now().UTC())
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("storing price for stock %d: %w", stockID, err)
	}
	if stored {
		utils.LoggerFromContext(ctx).WithFields(logrus.Fields{
			"stock_id": stockID,
			"ticker":   stock.Ticker,
			"price":    price.String(),
		}).Info("backfilled missing stock price")
		return price, true, nil
	}

	// Someone priced the stock between our read and write.
	stock, err = s.stockRepo.GetByID(ctx, stockID)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("reloading stock %d: %w", stockID, err)
	}
	if !stock.CurrentPrice.Valid {
		return decimal.Zero, false, nil
	}
	return stock.CurrentPrice.Decimal, true, nil
}
