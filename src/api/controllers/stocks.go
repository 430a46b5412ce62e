package controllers

import (
	"context"

	"investgame/src/schemas"
)

func (c *Controller) ListStocks(ctx context.Context) ([]schemas.StockResponse, error) {
	return c.Stocks.ListStocks(ctx)
}

// GetStockPrice returns OK=false rather than an error when no price exists.
func (c *Controller) GetStockPrice(ctx context.Context, stockID int) (*schemas.PriceResponse, error) {
	price, ok, err := c.Prices.EnsurePrice(ctx, stockID)
	if err != nil {
		return nil, toHTTPError(err)
	}
	if !ok {
		return &schemas.PriceResponse{OK: false, Error: "no price available"}, nil
	}
	asOf := c.now().UTC()
	return &schemas.PriceResponse{OK: true, Price: &price, AsOf: &asOf}, nil
}

func (c *Controller) Buy(ctx context.Context, req schemas.PurchaseRequest) (*schemas.PurchaseResult, error) {
	result, err := c.Purchases.Buy(ctx, req)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return result, nil
}

func (c *Controller) GetOverview(ctx context.Context) (*schemas.OverviewResponse, error) {
	return c.Leaderboard.GetOverview(ctx)
}

func (c *Controller) RefreshPrices(ctx context.Context) (*schemas.RefreshResult, error) {
	return c.Refresher.Refresh(ctx)
}
