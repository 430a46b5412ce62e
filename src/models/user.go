package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           int             `db:"user_id"`
	Name         string          `db:"name"`
	PasswordHash string          `db:"password_hash"`
	CashBalance  decimal.Decimal `db:"cash_balance"`
	CreatedAt    time.Time       `db:"created_at"`
}
