package schemas

import (
	"time"

	"github.com/shopspring/decimal"
)

type StockResponse struct {
	StockID        int              `json:"stock_id"`
	Name           string           `json:"name"`
	Ticker         string           `json:"ticker"`
	CurrentPrice   *decimal.Decimal `json:"current_price"`
	PriceUpdatedAt *time.Time       `json:"price_updated_at,omitempty"`
}

type PriceResponse struct {
	OK    bool             `json:"ok"`
	Price *decimal.Decimal `json:"price,omitempty"`
	AsOf  *time.Time       `json:"as_of,omitempty"`
	Error string           `json:"error,omitempty"`
}
