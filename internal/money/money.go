// Package money provides exact fixed-point currency amounts.
//
// Amounts are stored as integer cents so that arithmetic over ledger
// entries never drifts. Decimal strings are only handled at the API
// boundary, via shopspring/decimal.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrTooPrecise indicates more than two fractional digits.
	ErrTooPrecise = errors.New("amount has more than two decimal places")
	// ErrOutOfRange indicates the amount does not fit in 64-bit cents.
	ErrOutOfRange = errors.New("amount out of range")
)

// Money is an amount in integer cents. Negative values are allowed;
// they denote direction in ledger computations, not invalid input.
type Money int64

// Zero is the zero amount.
const Zero Money = 0

var centFactor = decimal.NewFromInt(100)

// Parse converts a decimal string like "12.50" into cents.
// At most two fractional digits are accepted.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return FromDecimal(d)
}

// FromDecimal converts a decimal amount into cents.
func FromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Mul(centFactor)
	if !cents.IsInteger() {
		return 0, ErrTooPrecise
	}
	if !cents.BigInt().IsInt64() {
		return 0, ErrOutOfRange
	}
	return Money(cents.IntPart()), nil
}

// FromCents wraps a raw cent count.
func FromCents(cents int64) Money { return Money(cents) }

// Cents returns the raw cent count.
func (m Money) Cents() int64 { return int64(m) }

// Decimal returns the amount as a two-place decimal.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// String formats the amount with two decimal places, e.g. "12.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Add returns m + other.
func (m Money) Add(other Money) Money { return m + other }

// Sub returns m - other.
func (m Money) Sub(other Money) Money { return m - other }

// Neg returns -m.
func (m Money) Neg() Money { return -m }

// Abs returns the magnitude of m.
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

// IsZero reports whether m is exactly zero.
func (m Money) IsZero() bool { return m == 0 }

// IsNegative reports whether m is below zero.
func (m Money) IsNegative() bool { return m < 0 }

// IsPositive reports whether m is above zero.
func (m Money) IsPositive() bool { return m > 0 }

// MarshalJSON encodes the amount as a decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON number or a decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	parsed, err := FromDecimal(d)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
