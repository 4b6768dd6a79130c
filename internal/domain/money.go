package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal" // Exact decimal parsing and formatting
)

// Money is an amount in cents
type Money int64

// MaxMoney is the largest amount accepted on input, 999999999999.99
const MaxMoney Money = 99_999_999_999_999

var (
	hundred  = decimal.NewFromInt(100)             // Cents per unit
	maxCents = decimal.NewFromInt(int64(MaxMoney)) // Upper bound in cents
)

// MoneyFromDecimal converts a decimal amount such as 20.00 into cents.
// More than two fractional digits, or a magnitude above MaxMoney, is a validation error.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Mul(hundred)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, Validation("INVALID_AMOUNT", "amount %s has more than two decimal places", d.String())
	}
	if cents.Abs().GreaterThan(maxCents) {
		return 0, Validation("INVALID_AMOUNT", "amount %s exceeds the maximum of %s", d.String(), MaxMoney.String())
	}
	return Money(cents.IntPart()), nil
}

// ParseMoney parses a decimal string into cents
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, Validation("INVALID_AMOUNT", "amount %q is not a number", s)
	}
	return MoneyFromDecimal(d)
}

// Decimal returns the amount as a two-place decimal
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// String formats the amount with two decimal places
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON renders the amount as a JSON number with two decimals
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or string holding a decimal amount
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := json.Unmarshal(b, &d); err != nil {
		return Validation("INVALID_AMOUNT", "amount is not a number")
	}
	v, err := MoneyFromDecimal(d)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Average divides total by n rounding half away from zero; zero when n is zero
func Average(total Money, n int64) Money {
	if n == 0 {
		return 0
	}
	avg := decimal.NewFromInt(int64(total)).Div(decimal.NewFromInt(n)).Round(0)
	return Money(avg.IntPart())
}
