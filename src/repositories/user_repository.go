package repositories

import (
	"context"

	"investgame/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User, tx pgx.Tx) error
	GetByID(ctx context.Context, userID int, tx pgx.Tx) (*models.User, error)
	// LockBalance reads the user's balance holding a row lock until tx ends.
	LockBalance(ctx context.Context, userID int, tx pgx.Tx) (decimal.Decimal, error)
	DebitBalance(ctx context.Context, userID int, amount decimal.Decimal, tx pgx.Tx) (decimal.Decimal, error)
}

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *models.User, tx pgx.Tx) error {
	err := conn(r.db, tx).QueryRow(ctx,
		`INSERT INTO users (name, password_hash, cash_balance)
		VALUES ($1, $2, $3)
		RETURNING user_id, created_at`,
		u.Name, u.PasswordHash, u.CashBalance,
	).Scan(&u.ID, &u.CreatedAt)
	return err
}

func (r *userRepo) GetByID(ctx context.Context, userID int, tx pgx.Tx) (*models.User, error) {
	var u models.User
	err := conn(r.db, tx).QueryRow(ctx,
		`SELECT user_id, name, password_hash, cash_balance, created_at
		FROM users WHERE user_id = $1`, userID,
	).Scan(&u.ID, &u.Name, &u.PasswordHash, &u.CashBalance, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *userRepo) LockBalance(ctx context.Context, userID int, tx pgx.Tx) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := conn(r.db, tx).QueryRow(ctx,
		`SELECT cash_balance FROM users WHERE user_id = $1 FOR UPDATE`, userID,
	).Scan(&balance)
	if err != nil {
		return decimal.Zero, notFound(err)
	}
	return balance, nil
}

func (r *userRepo) DebitBalance(ctx context.Context, userID int, amount decimal.Decimal, tx pgx.Tx) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := conn(r.db, tx).QueryRow(ctx,
		`UPDATE users SET cash_balance = cash_balance - $1
		WHERE user_id = $2
		RETURNING cash_balance`, amount, userID,
	).Scan(&balance)
	if err != nil {
		return decimal.Zero, notFound(err)
	}
	return balance, nil
}
