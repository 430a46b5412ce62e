package schemas

import (
	"time"

	"github.com/shopspring/decimal"
)

type HoldingLot struct {
	HoldingID     int              `json:"holding_id"`
	StockID       int              `json:"stock_id"`
	StockName     string           `json:"stock_name"`
	Ticker        string           `json:"ticker"`
	Quantity      int              `json:"quantity"`
	PurchasePrice decimal.Decimal  `json:"purchase_price"`
	CurrentPrice  *decimal.Decimal `json:"current_price"`
	PurchasedAt   time.Time        `json:"purchased_at"`
}

type Dashboard struct {
	UserID      int             `json:"user_id"`
	Name        string          `json:"name"`
	CashBalance decimal.Decimal `json:"cash_balance"`
	Holdings    []HoldingLot    `json:"holdings"`
}
