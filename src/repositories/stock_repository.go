package repositories

import (
	"context"
	"time"

	"investgame/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type StockRepository interface {
	GetAll(ctx context.Context, tx pgx.Tx) ([]models.Stock, error)
	GetByID(ctx context.Context, stockID int) (*models.Stock, error)
	UpdatePrice(ctx context.Context, stockID int, price decimal.Decimal, at time.Time, tx pgx.Tx) error
	// SetPriceIfNull stores price only when the stock has no price yet and
	// reports whether it did.
	SetPriceIfNull(ctx context.Context, stockID int, price decimal.Decimal, at time.Time) (bool, error)
}

type stockRepo struct {
	db *pgxpool.Pool
}

func NewStockRepository(db *pgxpool.Pool) StockRepository {
	return &stockRepo{db: db}
}

const stockColumns = `stock_id, name, ticker, current_price, price_updated_at`

func scanStock(row pgx.Row) (models.Stock, error) {
	var s models.Stock
	err := row.Scan(&s.ID, &s.Name, &s.Ticker, &s.CurrentPrice, &s.PriceUpdatedAt)
	return s, err
}

func (r *stockRepo) GetAll(ctx context.Context, tx pgx.Tx) ([]models.Stock, error) {
	rows, err := conn(r.db, tx).Query(ctx,
		`SELECT `+stockColumns+` FROM stocks ORDER BY stock_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stocks []models.Stock
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, err
		}
		stocks = append(stocks, s)
	}
	return stocks, rows.Err()
}

func (r *stockRepo) GetByID(ctx context.Context, stockID int) (*models.Stock, error) {
	s, err := scanStock(r.db.QueryRow(ctx,
		`SELECT `+stockColumns+` FROM stocks WHERE stock_id = $1`, stockID))
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *stockRepo) UpdatePrice(ctx context.Context, stockID int, price decimal.Decimal, at time.Time, tx pgx.Tx) error {
	tag, err := conn(r.db, tx).Exec(ctx,
		`UPDATE stocks SET current_price = $1, price_updated_at = $2 WHERE stock_id = $3`,
		price, at, stockID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *stockRepo) SetPriceIfNull(ctx context.Context, stockID int, price decimal.Decimal, at time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE stocks SET current_price = $1, price_updated_at = $2
		WHERE stock_id = $3 AND current_price IS NULL`,
		price, at, stockID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
