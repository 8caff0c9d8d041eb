package entity

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Money is a decimal amount that always renders with two fractional digits.
type Money struct {
	decimal.Decimal
}

// ParseMoney parses a plain decimal string such as "553.40".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Decimal: d}, nil
}

// MustMoney is ParseMoney for literals; it panics on bad input.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) String() string {
	return m.StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	return m.Decimal.UnmarshalJSON(b)
}

func (m Money) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalText(b []byte) error {
	return m.Decimal.UnmarshalText(b)
}

// MarshalYAML keeps YAML output identical to the JSON rendering.
func (m Money) MarshalYAML() (any, error) {
	return m.String(), nil
}
