package services

import (
	"context"
	"errors"
	"fmt"

	"investgame/src/database"
	"investgame/src/metrics"
	"investgame/src/models"
	"investgame/src/repositories"
	"investgame/src/schemas"
	"investgame/src/utils"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type PurchaseServiceI interface {
	Buy(ctx context.Context, req schemas.PurchaseRequest) (*schemas.PurchaseResult, error)
}

type PurchaseService struct {
	db          database.TxRunner
	userRepo    repositories.UserRepository
	holdingRepo repositories.HoldingRepository
	prices      PriceServiceI
}

func NewPurchaseService(
	db database.TxRunner,
	userRepo repositories.UserRepository,
	holdingRepo repositories.HoldingRepository,
	prices PriceServiceI,
) *PurchaseService {
	return &PurchaseService{
		db:          db,
		userRepo:    userRepo,
		holdingRepo: holdingRepo,
		prices:      prices,
	}
}

// Buy purchases quantity shares of a stock for a user at the current price.
// The balance is checked once without a lock to reject obvious overdrafts
// early and again under the user's row lock, which is the check that counts.
func (s *PurchaseService) Buy(ctx context.Context, req schemas.PurchaseRequest) (*schemas.PurchaseResult, error) {
	result, err := s.buy(ctx, req)
	var perr *PurchaseError
	switch {
	case err == nil:
		metrics.Purchases.WithLabelValues("completed").Inc()
	case errors.As(err, &perr):
		metrics.Purchases.WithLabelValues(outcomeLabel(perr.Reason)).Inc()
	default:
		metrics.Purchases.WithLabelValues("failed").Inc()
	}
	return result, err
}

func (s *PurchaseService) buy(ctx context.Context, req schemas.PurchaseRequest) (*schemas.PurchaseResult, error) {
	logger := utils.LoggerFromContext(ctx).WithFields(logrus.Fields{
		"user_id":  req.UserID,
		"stock_id": req.StockID,
		"quantity": req.Quantity,
	})

	if req.Quantity <= 0 {
		return nil, rejectPurchase(ErrInvalidQuantity, decimal.Zero, decimal.Zero)
	}

	price, ok, err := s.prices.EnsurePrice(ctx, req.StockID)
	if errors.Is(err, ErrStockNotFound) {
		return nil, rejectPurchase(ErrStockNotFound, decimal.Zero, decimal.Zero)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, rejectPurchase(ErrPriceUnavailable, decimal.Zero, decimal.Zero)
	}

	total := utils.LineTotal(price, req.Quantity)

	user, err := s.userRepo.GetByID(ctx, req.UserID, nil)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, rejectPurchase(ErrUserNotFound, total, decimal.Zero)
	}
	if err != nil {
		return nil, fmt.Errorf("loading user %d: %w", req.UserID, err)
	}
	if total.GreaterThan(user.CashBalance) {
		return nil, rejectPurchase(ErrInsufficientFunds, total, user.CashBalance)
	}

	result := &schemas.PurchaseResult{
		StockID:  req.StockID,
		Quantity: req.Quantity,
		Price:    price,
		Total:    total,
	}
	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		balance, err := s.userRepo.LockBalance(ctx, req.UserID, tx)
		if errors.Is(err, repositories.ErrNotFound) {
			return rejectPurchase(ErrUserNotFound, total, decimal.Zero)
		}
		if err != nil {
			return fmt.Errorf("locking balance of user %d: %w", req.UserID, err)
		}
		if total.GreaterThan(balance) {
			return rejectPurchase(ErrInsufficientFunds, total, balance)
		}

		lot := &models.Holding{
			UserID:        req.UserID,
			StockID:       req.StockID,
			Quantity:      req.Quantity,
			PurchasePrice: price,
		}
		if err := s.holdingRepo.Create(ctx, lot, tx); err != nil {
			return fmt.Errorf("recording holding: %w", err)
		}
		result.HoldingID = lot.ID

		result.Balance, err = s.userRepo.DebitBalance(ctx, req.UserID, total, tx)
		if err != nil {
			return fmt.Errorf("debiting user %d: %w", req.UserID, err)
		}
		return nil
	})
	var perr *PurchaseError
	if errors.As(err, &perr) {
		logger.WithError(err).Info("purchase rejected")
		return nil, err
	}
	if err != nil {
		logger.WithError(err).Error("purchase failed")
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"holding_id": result.HoldingID,
		"total":      total.StringFixed(2),
	}).Info("purchase completed")
	return result, nil
}

func outcomeLabel(reason error) string {
	switch {
	case errors.Is(reason, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(reason, ErrPriceUnavailable):
		return "price_unavailable"
	case errors.Is(reason, ErrInvalidQuantity):
		return "invalid_quantity"
	default:
		return "not_found"
	}
}
