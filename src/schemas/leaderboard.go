package schemas

import "github.com/shopspring/decimal"

type LeaderboardEntry struct {
	Rank        int             `json:"rank"`
	UserID      int             `json:"user_id"`
	Name        string          `json:"name"`
	CashBalance decimal.Decimal `json:"cash_balance"`
	StockValue  decimal.Decimal `json:"stock_value"`
	Total       decimal.Decimal `json:"total"`
}

type OverviewResponse struct {
	Refresh     *RefreshResult     `json:"refresh,omitempty"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}
