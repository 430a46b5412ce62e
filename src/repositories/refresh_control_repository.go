package repositories

import (
	"context"
	"time"

	"investgame/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RefreshControlRepository interface {
	// Lock creates the singleton row if needed and locks it until tx ends.
	Lock(ctx context.Context, tx pgx.Tx) (*models.RefreshControl, error)
	SetLastRefreshedAt(ctx context.Context, at time.Time, tx pgx.Tx) error
}

type refreshControlRepo struct {
	db *pgxpool.Pool
}

func NewRefreshControlRepository(db *pgxpool.Pool) RefreshControlRepository {
	return &refreshControlRepo{db: db}
}

func (r *refreshControlRepo) Lock(ctx context.Context, tx pgx.Tx) (*models.RefreshControl, error) {
	q := conn(r.db, tx)
	if _, err := q.Exec(ctx,
		`INSERT INTO price_refresh_control (id, last_refreshed_at)
		VALUES (TRUE, NULL)
		ON CONFLICT (id) DO NOTHING`); err != nil {
		return nil, err
	}

	var rc models.RefreshControl
	if err := q.QueryRow(ctx,
		`SELECT last_refreshed_at FROM price_refresh_control WHERE id = TRUE FOR UPDATE`,
	).Scan(&rc.LastRefreshedAt); err != nil {
		return nil, err
	}
	return &rc, nil
}

func (r *refreshControlRepo) SetLastRefreshedAt(ctx context.Context, at time.Time, tx pgx.Tx) error {
	_, err := conn(r.db, tx).Exec(ctx,
		`UPDATE price_refresh_control SET last_refreshed_at = $1 WHERE id = TRUE`, at)
	return err
}
