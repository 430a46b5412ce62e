package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"investgame/src/models"
	"investgame/src/repositories"
	"investgame/src/schemas"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const maxNameLength = 30

var pinPattern = regexp.MustCompile(`^\d{4}$`)

type UserServiceI interface {
	Register(ctx context.Context, req schemas.RegisterRequest) (*models.User, error)
	Authenticate(ctx context.Context, userID int, pin string) (*models.User, error)
	GetDashboard(ctx context.Context, userID int) (*schemas.Dashboard, error)
}

type UserService struct {
	userRepo         repositories.UserRepository
	holdingRepo      repositories.HoldingRepository
	startingBalance  decimal.Decimal
	failedLoginDelay time.Duration
}

func NewUserService(
	userRepo repositories.UserRepository,
	holdingRepo repositories.HoldingRepository,
	startingBalance decimal.Decimal,
	failedLoginDelay time.Duration,
) *UserService {
	return &UserService{
		userRepo:         userRepo,
		holdingRepo:      holdingRepo,
		startingBalance:  startingBalance,
		failedLoginDelay: failedLoginDelay,
	}
}

// Register creates a user with the starting cash balance. Names are trimmed
// and cut to 30 characters; the PIN must be exactly four digits.
func (s *UserService) Register(ctx context.Context, req schemas.RegisterRequest) (*models.User, error) {
	name := truncateRunes(strings.TrimSpace(req.Name), maxNameLength)
	if name == "" {
		return nil, ErrInvalidName
	}
	pin := strings.TrimSpace(req.PIN)
	if !pinPattern.MatchString(pin) {
		return nil, ErrInvalidPIN
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing pin: %w", err)
	}

	user := &models.User{
		Name:         name,
		PasswordHash: string(hash),
		CashBalance:  s.startingBalance,
	}
	if err := s.userRepo.Create(ctx, user, nil); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

// Authenticate checks a user's PIN. Failed attempts are answered only after
// failedLoginDelay.
func (s *UserService) Authenticate(ctx context.Context, userID int, pin string) (*models.User, error) {
	pin = strings.TrimSpace(pin)
	if !pinPattern.MatchString(pin) {
		return nil, ErrInvalidPIN
	}

	user, err := s.userRepo.GetByID(ctx, userID, nil)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("loading user %d: %w", userID, err)
	}
	if user != nil && bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(pin)) == nil {
		return user, nil
	}

	select {
	case <-time.After(s.failedLoginDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return nil, ErrInvalidCredentials
}

func (s *UserService) GetDashboard(ctx context.Context, userID int) (*schemas.Dashboard, error) {
	user, err := s.userRepo.GetByID(ctx, userID, nil)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading user %d: %w", userID, err)
	}

	holdings, err := s.holdingRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading holdings of user %d: %w", userID, err)
	}

	dashboard := &schemas.Dashboard{
		UserID:      user.ID,
		Name:        user.Name,
		CashBalance: user.CashBalance,
		Holdings:    make([]schemas.HoldingLot, 0, len(holdings)),
	}
	for _, h := range holdings {
		lot := schemas.HoldingLot{
			HoldingID:     h.ID,
			StockID:       h.StockID,
			StockName:     h.StockName,
			Ticker:        h.Ticker,
			Quantity:      h.Quantity,
			PurchasePrice: h.PurchasePrice,
			PurchasedAt:   h.PurchasedAt,
		}
		if h.CurrentPrice.Valid {
			price := h.CurrentPrice.Decimal
			lot.CurrentPrice = &price
		}
		dashboard.Holdings = append(dashboard.Holdings, lot)
	}
	return dashboard, nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
