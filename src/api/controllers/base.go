package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"investgame/src/schemas"
	"investgame/src/services"
	"investgame/src/utils"

	"github.com/go-chi/jwtauth"
)

type IController interface {
	Register(ctx context.Context, req schemas.RegisterRequest) (*schemas.RegisterResponse, error)
	IssueToken(ctx context.Context, req schemas.TokenRequest) (*schemas.TokenResponse, error)
	ListStocks(ctx context.Context) ([]schemas.StockResponse, error)
	GetStockPrice(ctx context.Context, stockID int) (*schemas.PriceResponse, error)
	GetDashboard(ctx context.Context, userID int) (*schemas.Dashboard, error)
	Buy(ctx context.Context, req schemas.PurchaseRequest) (*schemas.PurchaseResult, error)
	GetOverview(ctx context.Context) (*schemas.OverviewResponse, error)
	RefreshPrices(ctx context.Context) (*schemas.RefreshResult, error)
}

type Controller struct {
	Users       services.UserServiceI
	Stocks      services.StockServiceI
	Prices      services.PriceServiceI
	Purchases   services.PurchaseServiceI
	Leaderboard services.LeaderboardServiceI
	Refresher   services.RefreshServiceI
	TokenAuth   *jwtauth.JWTAuth
	TokenTTL    time.Duration
	now         func() time.Time
}

func NewController(
	users services.UserServiceI,
	stocks services.StockServiceI,
	prices services.PriceServiceI,
	purchases services.PurchaseServiceI,
	leaderboard services.LeaderboardServiceI,
	refresher services.RefreshServiceI,
	tokenAuth *jwtauth.JWTAuth,
	tokenTTL time.Duration,
) *Controller {
	return &Controller{
		Users:       users,
		Stocks:      stocks,
		Prices:      prices,
		Purchases:   purchases,
		Leaderboard: leaderboard,
		Refresher:   refresher,
		TokenAuth:   tokenAuth,
		TokenTTL:    tokenTTL,
		now:         time.Now,
	}
}

// toHTTPError maps service errors onto status codes. Unknown errors pass
// through and end up as 500s.
func toHTTPError(err error) error {
	var perr *services.PurchaseError
	switch {
	case errors.As(err, &perr) && errors.Is(err, services.ErrInsufficientFunds):
		return utils.WrapHTTPError(http.StatusConflict, perr.Error(), err)
	case errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidName),
		errors.Is(err, services.ErrInvalidPIN):
		return utils.WrapHTTPError(http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, services.ErrInvalidCredentials):
		return utils.WrapHTTPError(http.StatusUnauthorized, err.Error(), err)
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrStockNotFound):
		return utils.WrapHTTPError(http.StatusNotFound, err.Error(), err)
	case errors.Is(err, services.ErrPriceUnavailable):
		return utils.WrapHTTPError(http.StatusServiceUnavailable, err.Error(), err)
	}
	return err
}
