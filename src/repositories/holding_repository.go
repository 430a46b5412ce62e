package repositories

import (
	"context"

	"investgame/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HoldingRepository interface {
	Create(ctx context.Context, h *models.Holding, tx pgx.Tx) error
	GetByUserID(ctx context.Context, userID int) ([]models.HoldingDetail, error)
}

type holdingRepo struct {
	db *pgxpool.Pool
}

func NewHoldingRepository(db *pgxpool.Pool) HoldingRepository {
	return &holdingRepo{db: db}
}

func (r *holdingRepo) Create(ctx context.Context, h *models.Holding, tx pgx.Tx) error {
	return conn(r.db, tx).QueryRow(ctx,
		`INSERT INTO holdings (user_id, stock_id, quantity, purchase_price)
		VALUES ($1, $2, $3, $4)
		RETURNING holding_id, purchased_at`,
		h.UserID, h.StockID, h.Quantity, h.PurchasePrice,
	).Scan(&h.ID, &h.PurchasedAt)
}

func (r *holdingRepo) GetByUserID(ctx context.Context, userID int) ([]models.HoldingDetail, error) {
	rows, err := r.db.Query(ctx,
		`SELECT h.holding_id, h.user_id, h.stock_id, h.quantity, h.purchase_price, h.purchased_at,
			s.name, s.ticker, s.current_price
		FROM holdings h
		JOIN stocks s ON s.stock_id = h.stock_id
		WHERE h.user_id = $1
		ORDER BY h.purchased_at DESC, h.holding_id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holdings []models.HoldingDetail
	for rows.Next() {
		var h models.HoldingDetail
		if err := rows.Scan(&h.ID, &h.UserID, &h.StockID, &h.Quantity, &h.PurchasePrice, &h.PurchasedAt,
			&h.StockName, &h.Ticker, &h.CurrentPrice); err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}
