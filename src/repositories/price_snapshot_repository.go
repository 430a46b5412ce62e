package repositories

import (
	"context"

	"investgame/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PriceSnapshotRepository interface {
	Create(ctx context.Context, s *models.PriceSnapshot, tx pgx.Tx) error
	GetByStockID(ctx context.Context, stockID int) ([]models.PriceSnapshot, error)
}

type priceSnapshotRepo struct {
	db *pgxpool.Pool
}

func NewPriceSnapshotRepository(db *pgxpool.Pool) PriceSnapshotRepository {
	return &priceSnapshotRepo{db: db}
}

func (r *priceSnapshotRepo) Create(ctx context.Context, s *models.PriceSnapshot, tx pgx.Tx) error {
	return conn(r.db, tx).QueryRow(ctx,
		`INSERT INTO stock_price_snapshots (stock_id, price, source, captured_at)
		VALUES ($1, $2, $3, $4)
		RETURNING snapshot_id`,
		s.StockID, s.Price, s.Source, s.CapturedAt,
	).Scan(&s.ID)
}

func (r *priceSnapshotRepo) GetByStockID(ctx context.Context, stockID int) ([]models.PriceSnapshot, error) {
	rows, err := r.db.Query(ctx,
		`SELECT snapshot_id, stock_id, price, source, captured_at
		FROM stock_price_snapshots
		WHERE stock_id = $1
		ORDER BY captured_at, snapshot_id`, stockID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []models.PriceSnapshot
	for rows.Next() {
		var s models.PriceSnapshot
		if err := rows.Scan(&s.ID, &s.StockID, &s.Price, &s.Source, &s.CapturedAt); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}
