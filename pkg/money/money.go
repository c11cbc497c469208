// Package money provides currency-safe arithmetic over integer centavos for
// the amounts this service reports. Parsing keeps full precision in
// shopspring/decimal; go-money handles locale-correct display.
package money

import (
	"encoding/json"
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// BRL is the only currency Brazilian bank statements carry.
const BRL = "BRL"

// Money is an immutable BRL amount stored in centavos.
type Money struct {
	m *money.Money
}

// FromCents creates Money from minor units.
func FromCents(cents int64) *Money {
	return &Money{m: money.New(cents, BRL)}
}

// FromDecimal converts a decimal amount of reais to Money, rounding half-up
// at the centavo.
func FromDecimal(amount decimal.Decimal) *Money {
	cents := amount.Mul(decimal.New(1, 2)).Round(0).IntPart()
	return FromCents(cents)
}

// Zero returns a zero BRL amount.
func Zero() *Money {
	return FromCents(0)
}

// Cents returns the amount in centavos.
func (m *Money) Cents() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Decimal returns the amount in reais.
func (m *Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents(), -2)
}

// Add returns the sum of two amounts.
func (m *Money) Add(other *Money) *Money {
	return FromCents(m.Cents() + other.Cents())
}

// IsZero reports whether the amount is zero.
func (m *Money) IsZero() bool {
	return m.Cents() == 0
}

// Display renders the amount in Brazilian format, e.g. "R$1.234,56".
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return money.New(0, BRL).Display()
	}
	return m.m.Display()
}

// MarshalJSON encodes the amount as a fixed two-decimal string.
func (m *Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Decimal().StringFixed(2))
}

// UnmarshalJSON decodes a two-decimal string amount.
func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", s, err)
	}
	m.m = FromDecimal(d).m
	return nil
}
