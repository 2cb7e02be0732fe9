package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount magnitude bounds, roughly those of a float64. Values outside them
// would render as enormous digit strings.
const (
	MaxAmountIntegerDigits = 309
	MaxAmountScale         = 340
)

// ParseKind matches s exactly against the known kinds.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", &ValidationError{Field: "kind", Value: s, Err: ErrInvalidKind}
	}
	return k, nil
}

// ParseAmount parses a user supplied decimal number. Surrounding whitespace is
// ignored; exponent notation is accepted within the amount bounds. The result
// keeps its sign.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, &ValidationError{Field: "amount", Value: raw, Err: ErrInvalidAmount}
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: "amount", Value: raw, Err: ErrInvalidAmount}
	}

	if amount.Exponent() < -MaxAmountScale || amount.NumDigits()+int(amount.Exponent()) > MaxAmountIntegerDigits {
		return decimal.Zero, &ValidationError{Field: "amount", Value: raw, Err: ErrInvalidAmount}
	}

	return amount, nil
}
