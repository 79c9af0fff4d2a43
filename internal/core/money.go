// Package core holds the ledger domain: transactions, exact money
// arithmetic, validation, and the derived summary calculations.
package core

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an exact decimal amount. The zero value is zero. Arithmetic
// never touches binary floating point, so repeated aggregation does not
// accumulate rounding error.
type Money struct {
	value decimal.Decimal
}

// NewMoney wraps an arbitrary decimal value.
func NewMoney(d decimal.Decimal) Money {
	return Money{value: d}
}

// ParseAmount parses a boundary amount. It accepts plain decimal strings
// ("12.34") and rejects non-numeric, zero, or negative input.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("0")     -> error
//	ParseAmount("-5")    -> error
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, invalidField("amount", "must be provided")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, invalidField("amount", "must be a decimal number")
	}
	if !d.IsPositive() {
		return Money{}, invalidField("amount", "must be greater than zero")
	}
	return Money{value: d}, nil
}

func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value)} }

// Cmp returns -1, 0, or 1 comparing m to n.
func (m Money) Cmp(n Money) int { return m.value.Cmp(n.value) }

func (m Money) Equal(n Money) bool { return m.value.Equal(n.value) }
func (m Money) IsPositive() bool   { return m.value.IsPositive() }
func (m Money) IsZero() bool       { return m.value.IsZero() }

// Decimal exposes the underlying exact value.
func (m Money) Decimal() decimal.Decimal { return m.value }

// String renders the amount with two decimal places for display.
func (m Money) String() string { return m.value.StringFixed(2) }

// MarshalJSON emits a bare JSON number with two decimal places.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.value.StringFixed(2)), nil
}

// structuredDecimal is the document-store native decimal encoding
// (Decimal128 serialized as {"$numberDecimal": "12.34"}).
type structuredDecimal struct {
	NumberDecimal string `json:"$numberDecimal"`
}

// UnmarshalJSON accepts a JSON number, a decimal string, or the store's
// structured decimal form. All three normalize to the same exact value.
func (m *Money) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var sd structuredDecimal
		if err := json.Unmarshal(data, &sd); err != nil {
			return invalidField("amount", "malformed decimal object")
		}
		d, err := decimal.NewFromString(strings.TrimSpace(sd.NumberDecimal))
		if err != nil {
			return invalidField("amount", "must be a decimal number")
		}
		m.value = d
		return nil
	}
	s := strings.Trim(trimmed, `"`)
	if s == "" || s == "null" {
		m.value = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return invalidField("amount", "must be a decimal number")
	}
	m.value = d
	return nil
}
