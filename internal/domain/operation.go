package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amounts are bounded to what a NUMERIC(23,8) column holds.
const (
	MaxAmountIntegerDigits  = 15
	MaxAmountFractionDigits = 8
)

type OperationType string

const (
	OperationTypeIncome  OperationType = "income"
	OperationTypeExpense OperationType = "expense"
)

func ParseOperationType(rawOperationType string) (OperationType, error) {
	operationType := OperationType(rawOperationType)
	if !operationType.IsValid() {
		return "", fmt.Errorf("%w: got %q", ErrInvalidOperationType, rawOperationType)
	}
	return operationType, nil
}

func (operationType OperationType) IsValid() bool {
	return operationType == OperationTypeIncome || operationType == OperationTypeExpense
}

// Operation is a single recorded income or expense. Records are immutable once stored.
type Operation struct {
	Identifier int64
	Type       OperationType
	Amount     decimal.Decimal
	Category   string
	Date       Date
}

// SignedAmount returns the amount as it contributes to the balance.
func (operation Operation) SignedAmount() decimal.Decimal {
	if operation.Type == OperationTypeExpense {
		return operation.Amount.Neg()
	}
	return operation.Amount
}

// NewOperation carries the caller supplied fields of an operation before the store assigns an identifier.
type NewOperation struct {
	Type     OperationType
	Amount   decimal.Decimal
	Category string
	Date     Date
}

// Validate checks the operation and returns it with the category trimmed.
func (newOperation NewOperation) Validate() (NewOperation, error) {
	if !newOperation.Type.IsValid() {
		return NewOperation{}, fmt.Errorf("%w: got %q", ErrInvalidOperationType, string(newOperation.Type))
	}

	if !amountWithinRange(newOperation.Amount) {
		return NewOperation{}, ErrAmountOutOfRange
	}

	if !newOperation.Amount.GreaterThan(decimal.Zero) {
		return NewOperation{}, fmt.Errorf("%w: got %s", ErrNonPositiveAmount, newOperation.Amount.String())
	}

	newOperation.Category = strings.TrimSpace(newOperation.Category)
	if newOperation.Category == "" {
		return NewOperation{}, ErrEmptyCategory
	}

	if newOperation.Date.IsZero() {
		return NewOperation{}, ErrMissingDate
	}

	return newOperation, nil
}

// amountWithinRange inspects only the exponent and coefficient length until the
// magnitude is known to be small, so huge exponents are never expanded.
func amountWithinRange(amount decimal.Decimal) bool {
	exponent := int64(amount.Exponent())
	if exponent > MaxAmountIntegerDigits || exponent < -(MaxAmountIntegerDigits+MaxAmountFractionDigits) {
		return false
	}

	if int64(amount.NumDigits())+exponent > MaxAmountIntegerDigits {
		return false
	}

	return amount.Equal(amount.Truncate(MaxAmountFractionDigits))
}
