package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity    = errors.New("quantity must be greater than zero")
	ErrUserNotFound       = errors.New("user not found")
	ErrStockNotFound      = errors.New("stock not found")
	ErrPriceUnavailable   = errors.New("no price available")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidName        = errors.New("name is required")
	ErrInvalidPIN         = errors.New("pin must be exactly 4 digits")
	ErrInvalidCredentials = errors.New("invalid user id or pin")
)

// PurchaseError is a rejected purchase. Nothing was written when it is returned.
type PurchaseError struct {
	Reason  error
	Total   decimal.Decimal
	Balance decimal.Decimal
}

func (e *PurchaseError) Error() string {
	if errors.Is(e.Reason, ErrInsufficientFunds) {
		return fmt.Sprintf("%v: total %s exceeds balance %s", e.Reason, e.Total.StringFixed(2), e.Balance.StringFixed(2))
	}
	return e.Reason.Error()
}

func (e *PurchaseError) Unwrap() error {
	return e.Reason
}

func rejectPurchase(reason error, total, balance decimal.Decimal) error {
	return &PurchaseError{Reason: reason, Total: total, Balance: balance}
}
