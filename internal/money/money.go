package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrTooManyDecimals = errors.New("amount has too many decimal places")
	ErrOutOfRange      = errors.New("amount out of range")
)

var (
	hundred  = decimal.NewFromInt(100)
	maxMinor = decimal.NewFromInt(1<<63 - 1)
)

// ParseMinor converts a decimal string such as "1500.5" into minor units.
func ParseMinor(input string) (int64, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, ErrInvalidAmount
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return FromDecimal(value)
}

// FromDecimal converts a major-unit decimal into minor units, rejecting
// fractions finer than a cent.
func FromDecimal(value decimal.Decimal) (int64, error) {
	minor := value.Mul(hundred)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, ErrTooManyDecimals
	}
	if minor.Abs().GreaterThan(maxMinor) {
		return 0, ErrOutOfRange
	}
	return minor.IntPart(), nil
}

func ToDecimal(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// FormatMinor renders minor units with exactly two decimals.
func FormatMinor(value int64) string {
	return ToDecimal(value).StringFixed(2)
}
