package service

import (
	"context"
	"fmt"

	"personal-budget/internal/domain"
	"personal-budget/internal/metrics"
	"personal-budget/internal/repository"
)

const DefaultListLimit = 100

type OperationService struct {
	OperationRepository repository.OperationRepository
}

func NewOperationService(operationRepository repository.OperationRepository) *OperationService {
	return &OperationService{OperationRepository: operationRepository}
}

// RecordOperation validates the operation before anything is persisted and
// returns the stored record with its assigned identifier.
func (service *OperationService) RecordOperation(contextWithTimeout context.Context, newOperation domain.NewOperation) (domain.Operation, error) {
	validatedOperation, validationError := newOperation.Validate()
	if validationError != nil {
		metrics.OperationsRejected.Inc()
		return domain.Operation{}, validationError
	}

	createdOperation, creationError := service.OperationRepository.CreateOperation(contextWithTimeout, validatedOperation)
	if creationError != nil {
		return domain.Operation{}, fmt.Errorf("create operation: %w", creationError)
	}

	metrics.OperationsCreated.WithLabelValues(string(createdOperation.Type)).Inc()
	return createdOperation, nil
}

// ListOperations returns up to limit operations after skipping skip of them, in identifier order.
func (service *OperationService) ListOperations(contextWithTimeout context.Context, skip int, limit int) ([]domain.Operation, error) {
	if skip < 0 || limit < 0 {
		return nil, fmt.Errorf("%w: skip=%d limit=%d", domain.ErrInvalidPagination, skip, limit)
	}

	operations, listError := service.OperationRepository.ListOperations(contextWithTimeout, skip, limit)
	if listError != nil {
		return nil, fmt.Errorf("list operations: %w", listError)
	}

	return operations, nil
}

// DeleteOperation removes the operation and returns its prior state, or
// domain.ErrOperationNotFound when no operation has the identifier.
func (service *OperationService) DeleteOperation(contextWithTimeout context.Context, identifier int64) (domain.Operation, error) {
	deletedOperation, found, deleteError := service.OperationRepository.DeleteOperation(contextWithTimeout, identifier)
	if deleteError != nil {
		return domain.Operation{}, fmt.Errorf("delete operation %d: %w", identifier, deleteError)
	}

	if !found {
		return domain.Operation{}, fmt.Errorf("%w: id %d", domain.ErrOperationNotFound, identifier)
	}

	metrics.OperationsDeleted.Inc()
	return deletedOperation, nil
}

func (service *OperationService) CountOperations(contextWithTimeout context.Context) (int64, error) {
	operationCount, countError := service.OperationRepository.CountOperations(contextWithTimeout)
	if countError != nil {
		return 0, fmt.Errorf("count operations: %w", countError)
	}
	return operationCount, nil
}
