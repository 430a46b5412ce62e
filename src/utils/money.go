package utils

import "github.com/shopspring/decimal"

const (
	// CurrencyPlaces is the number of minor-unit digits of the game currency.
	CurrencyPlaces = 2
	// PricePlaces is the scale share prices are stored with.
	PricePlaces = 4
)

// RoundCurrency rounds an amount to the currency's minor unit, half-up.
// All amounts in the game are non-negative, so half away from zero is half-up.
func RoundCurrency(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(CurrencyPlaces)
}

// RoundPrice scales a share price to the stored precision, half-up.
// Prices must be rounded before they are compared with or written over a
// stored price.
func RoundPrice(price decimal.Decimal) decimal.Decimal {
	return price.Round(PricePlaces)
}

// LineTotal is the cost of quantity units at price, rounded to the minor unit.
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return RoundCurrency(price.Mul(decimal.NewFromInt(int64(quantity))))
}
