// Package cardnumber issues 16-digit card numbers with a Luhn check digit.
package cardnumber

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"

	"cardledger/internal/apperr"
	"cardledger/internal/db"
)

const (
	Length             = 16
	DefaultMaxAttempts = 10

	// largest multiple of 10 below 256; bytes at or above it are rejected
	// so every digit is equally likely
	sampleThreshold = 250
)

var (
	ErrInvalidLength = errors.New("card number must be 16 digits")
	ErrNotDigits     = errors.New("card number must contain digits only")
	ErrLuhn          = errors.New("invalid luhn check digit")
)

// ExistsFunc reports whether a number is already assigned.
type ExistsFunc func(ctx context.Context, number string) (bool, error)

// ReserveFunc persists a number. It must fail with a unique violation when
// the number is taken.
type ReserveFunc func(ctx context.Context, number string) error

type Generator struct {
	MaxAttempts int
	Random      io.Reader
}

func NewGenerator(maxAttempts int) *Generator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Generator{MaxAttempts: maxAttempts, Random: rand.Reader}
}

// Next draws a single candidate number. The leading digit is never zero.
func (g *Generator) Next() (string, error) {
	body, err := g.digits(Length - 1)
	if err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}
	return body + string(checkDigit(body)), nil
}

// Issue draws candidates until reserve accepts one. Numbers reported taken by
// exists are skipped without reserving; reserve failing with a unique
// violation counts as a collision. Any other error aborts.
func (g *Generator) Issue(ctx context.Context, exists ExistsFunc, reserve ReserveFunc) (string, error) {
	for attempt := 0; attempt < g.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		number, err := g.Next()
		if err != nil {
			return "", err
		}
		if exists != nil {
			taken, err := exists(ctx, number)
			if err != nil {
				return "", err
			}
			if taken {
				continue
			}
		}
		if err := reserve(ctx, number); err != nil {
			if db.IsUniqueViolation(err) {
				continue
			}
			return "", err
		}
		return number, nil
	}
	return "", apperr.ResourceExhausted(fmt.Sprintf("could not allocate a unique card number after %d attempts", g.MaxAttempts))
}

func (g *Generator) digits(count int) (string, error) {
	src := g.Random
	if src == nil {
		src = rand.Reader
	}
	var sb strings.Builder
	sb.Grow(count)
	buf := make([]byte, 32)
	for sb.Len() < count {
		n, err := io.ReadFull(src, buf)
		if err != nil {
			return "", err
		}
		for i := 0; i < n && sb.Len() < count; i++ {
			b := buf[i]
			if b >= sampleThreshold {
				continue
			}
			d := b % 10
			if sb.Len() == 0 && d == 0 {
				continue
			}
			sb.WriteByte('0' + d)
		}
	}
	return sb.String(), nil
}

func checkDigit(body string) byte {
	sum, double := 0, true
	for i := len(body) - 1; i >= 0; i-- {
		d := int(body[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return byte('0' + (10-sum%10)%10)
}

func Validate(number string) error {
	if len(number) != Length {
		return ErrInvalidLength
	}
	for i := 0; i < len(number); i++ {
		if number[i] < '0' || number[i] > '9' {
			return ErrNotDigits
		}
	}
	if number[Length-1] != checkDigit(number[:Length-1]) {
		return ErrLuhn
	}
	return nil
}

// Mask keeps the first six and last four digits, for logs.
func Mask(number string) string {
	if len(number) < 10 {
		return strings.Repeat("*", len(number))
	}
	return number[:6] + strings.Repeat("*", len(number)-10) + number[len(number)-4:]
}
