package handlers

import (
	"strconv"

	"cardledger/internal/apperr"
	"cardledger/internal/money"

	"github.com/shopspring/decimal"
)

var errInvalidAmount = apperr.Validation("invalid amount")

// amountMinor accepts amounts in major units with at most two decimals.
func amountMinor(value decimal.Decimal) (int64, error) {
	minor, err := money.FromDecimal(value)
	if err != nil {
		return 0, errInvalidAmount
	}
	return minor, nil
}

func parseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
