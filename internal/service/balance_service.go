package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"personal-budget/internal/domain"
	"personal-budget/internal/metrics"
	"personal-budget/internal/repository"
)

type BalanceSummary struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

type BalanceService struct {
	OperationRepository repository.OperationRepository
}

func NewBalanceService(operationRepository repository.OperationRepository) *BalanceService {
	return &BalanceService{OperationRepository: operationRepository}
}

// Balance returns total income minus total expense. It is recomputed from the store on every call.
func (service *BalanceService) Balance(contextWithTimeout context.Context) (decimal.Decimal, error) {
	summary, summaryError := service.Summary(contextWithTimeout)
	if summaryError != nil {
		return decimal.Zero, summaryError
	}
	return summary.Balance, nil
}

func (service *BalanceService) Summary(contextWithTimeout context.Context) (BalanceSummary, error) {
	incomeTotal, incomeError := service.OperationRepository.SumAmountByType(contextWithTimeout, domain.OperationTypeIncome)
	if incomeError != nil {
		return BalanceSummary{}, fmt.Errorf("sum income: %w", incomeError)
	}

	expenseTotal, expenseError := service.OperationRepository.SumAmountByType(contextWithTimeout, domain.OperationTypeExpense)
	if expenseError != nil {
		return BalanceSummary{}, fmt.Errorf("sum expense: %w", expenseError)
	}

	balance := incomeTotal.Sub(expenseTotal)
	metrics.Balance.Set(balance.InexactFloat64())

	return BalanceSummary{Income: incomeTotal, Expense: expenseTotal, Balance: balance}, nil
}
