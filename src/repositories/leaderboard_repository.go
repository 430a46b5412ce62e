package repositories

import (
	"context"

	"investgame/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type LeaderboardRepository interface {
	GetStandings(ctx context.Context) ([]models.LeaderboardEntry, error)
}

type leaderboardRepo struct {
	db *pgxpool.Pool
}

func NewLeaderboardRepository(db *pgxpool.Pool) LeaderboardRepository {
	return &leaderboardRepo{db: db}
}

// GetStandings values every user's lots at the stored price; a stock without
// a price contributes nothing.
func (r *leaderboardRepo) GetStandings(ctx context.Context) ([]models.LeaderboardEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_id, name, cash_balance, stock_value, cash_balance + stock_value AS total
		FROM (
			SELECT u.user_id, u.name, u.cash_balance,
				COALESCE(SUM(h.quantity * COALESCE(s.current_price, 0)), 0) AS stock_value
			FROM users u
			LEFT JOIN holdings h ON h.user_id = u.user_id
			LEFT JOIN stocks s ON s.stock_id = h.stock_id
			GROUP BY u.user_id, u.name, u.cash_balance
		) standings
		ORDER BY total DESC, user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.CashBalance, &e.StockValue, &e.Total); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
