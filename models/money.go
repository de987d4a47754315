package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a service or booking carries no currency code.
const DefaultCurrency = "INR"

// minorDigits is the number of minor-unit digits for every supported currency.
const minorDigits = 2

var ErrInvalidAmount = errors.New("invalid amount")

// Amount is a fixed-point monetary value counted in minor units (paise for INR).
type Amount int64

// ParseAmount parses a decimal string such as "1000" or "999.50".
// Values with more precision than the minor unit are rejected rather than rounded.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return AmountFromDecimal(d)
}

// AmountFromDecimal converts a decimal major-unit value into minor units.
func AmountFromDecimal(d decimal.Decimal) (Amount, error) {
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: negative value %s", ErrInvalidAmount, d.String())
	}
	minor := d.Shift(minorDigits)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidAmount, d.String(), minorDigits)
	}
	if minor.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, fmt.Errorf("%w: %s is too large", ErrInvalidAmount, d.String())
	}
	return Amount(minor.IntPart()), nil
}

// Minor returns the amount in the currency's smallest unit.
func (a Amount) Minor() int64 { return int64(a) }

// Mul multiplies the amount by a whole quantity, e.g. price per person times
// people. n must not be negative.
func (a Amount) Mul(n int) (Amount, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: negative quantity %d", ErrInvalidAmount, n)
	}
	if n > 0 && a > Amount(math.MaxInt64/int64(n)) {
		return 0, fmt.Errorf("%w: %s times %d overflows", ErrInvalidAmount, a, n)
	}
	return a * Amount(n), nil
}

// Decimal returns the amount in major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -minorDigits)
}

// String renders the amount in major units with two decimals, e.g. "2000.00".
func (a Amount) String() string {
	return a.Decimal().StringFixed(minorDigits)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts both JSON strings ("1000.50") and numbers (1000.5).
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	parsed, err := ParseAmount(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
