package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is a single purchase lot. Lots are never merged.
type Holding struct {
	ID            int             `db:"holding_id"`
	UserID        int             `db:"user_id"`
	StockID       int             `db:"stock_id"`
	Quantity      int             `db:"quantity"`
	PurchasePrice decimal.Decimal `db:"purchase_price"`
	PurchasedAt   time.Time       `db:"purchased_at"`
}

// HoldingDetail is a lot joined with its stock, as shown on the dashboard.
type HoldingDetail struct {
	Holding
	StockName    string
	Ticker       string
	CurrentPrice decimal.NullDecimal
}

// LeaderboardEntry is one user's total portfolio value.
type LeaderboardEntry struct {
	UserID      int
	Name        string
	CashBalance decimal.Decimal
	StockValue  decimal.Decimal
	Total       decimal.Decimal
}
