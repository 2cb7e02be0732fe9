package domain

import (
	"errors"
	"fmt"
)

var (
	// Validation errors
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidKind   = errors.New("invalid transaction kind")

	// Persistence errors
	ErrMalformedLine   = errors.New("malformed ledger line")
	ErrMalformedAmount = errors.New("malformed amount in ledger file")
	ErrPersist         = errors.New("ledger persistence failed")
)

// ValidationError reports a rejected user input. It unwraps to one of the
// validation sentinels above.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %q", e.Err, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
