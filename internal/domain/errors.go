package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is wrapped by every input validation failure so callers can
// reject a request before anything is persisted.
var ErrValidation = errors.New("validation failed")

var (
	ErrInvalidOperationType = fmt.Errorf("%w: type must be 'income' or 'expense'", ErrValidation)
	ErrNonPositiveAmount    = fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	ErrAmountOutOfRange     = fmt.Errorf("%w: amount must have at most %d integer digits and %d decimal places", ErrValidation, MaxAmountIntegerDigits, MaxAmountFractionDigits)
	ErrEmptyCategory        = fmt.Errorf("%w: category must be provided", ErrValidation)
	ErrMissingDate          = fmt.Errorf("%w: date must be provided", ErrValidation)
	ErrInvalidDate          = fmt.Errorf("%w: date must use the YYYY-MM-DD format", ErrValidation)
	ErrInvalidPagination    = fmt.Errorf("%w: skip and limit must be non-negative", ErrValidation)
)

var ErrOperationNotFound = errors.New("operation not found")
