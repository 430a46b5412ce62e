package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Stock struct {
	ID             int                 `db:"stock_id"`
	Name           string              `db:"name"`
	Ticker         string              `db:"ticker"`
	CurrentPrice   decimal.NullDecimal `db:"current_price"`
	PriceUpdatedAt *time.Time          `db:"price_updated_at"`
}

// PriceSnapshot is one entry of the append-only price audit trail.
type PriceSnapshot struct {
	ID         int             `db:"snapshot_id"`
	StockID    int             `db:"stock_id"`
	Price      decimal.Decimal `db:"price"`
	Source     string          `db:"source"`
	CapturedAt time.Time       `db:"captured_at"`
}
