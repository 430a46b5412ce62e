package schemas

import "github.com/shopspring/decimal"

type PurchaseRequest struct {
	UserID   int `json:"-"`
	StockID  int `json:"stock_id" validate:"required,min=1"`
	Quantity int `json:"quantity"`
}

type PurchaseResult struct {
	HoldingID int             `json:"holding_id"`
	StockID   int             `json:"stock_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
	Balance   decimal.Decimal `json:"balance"`
}
