package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"personal-budget/internal/config"
	"personal-budget/internal/domain"
)

const defaultStatementTimeout = 5 * time.Second

// OperationRepository persists operations. Rows are iterated in primary key order.
type OperationRepository interface {
	ListOperations(ctx context.Context, skip int, limit int) ([]domain.Operation, error)
	CreateOperation(ctx context.Context, newOperation domain.NewOperation) (domain.Operation, error)
	// DeleteOperation reports found=false without an error when no row has the identifier.
	DeleteOperation(ctx context.Context, identifier int64) (domain.Operation, bool, error)
	SumAmountByType(ctx context.Context, operationType domain.OperationType) (decimal.Decimal, error)
	CountOperations(ctx context.Context) (int64, error)
}

// NewOperationRepository returns the repository implementation matching the database driver.
func NewOperationRepository(driver string, database *sql.DB, statementTimeout time.Duration) (OperationRepository, error) {
	switch driver {
	case config.DatabaseDriverPostgres:
		return NewPostgresOperationRepository(database, statementTimeout), nil
	case config.DatabaseDriverSQLite:
		return NewSQLiteOperationRepository(database, statementTimeout), nil
	default:
		return nil, fmt.Errorf("no operation repository for driver %q", driver)
	}
}

type PostgresOperationRepository struct {
	Database         *sql.DB
	StatementTimeout time.Duration
}

func NewPostgresOperationRepository(database *sql.DB, statementTimeout time.Duration) *PostgresOperationRepository {
	if statementTimeout <= 0 {
		statementTimeout = defaultStatementTimeout
	}
	return &PostgresOperationRepository{Database: database, StatementTimeout: statementTimeout}
}

func (repository *PostgresOperationRepository) ListOperations(contextWithTimeout context.Context, skip int, limit int) ([]domain.Operation, error) {
	querySQL := `SELECT id, type, amount, category, date FROM operations ORDER BY id ASC LIMIT $1 OFFSET $2`
	queryContext, queryCancel := context.WithTimeout(contextWithTimeout, repository.StatementTimeout)
	defer queryCancel()

	rows, queryError := repository.Database.QueryContext(queryContext, querySQL, limit, skip)
	if queryError != nil {
		return nil, queryError
	}
	defer rows.Close()

	return scanOperationRows(rows)
}

func (repository *PostgresOperationRepository) CreateOperation(contextWithTimeout context.Context, newOperation domain.NewOperation) (domain.Operation, error) {
	insertSQL := `INSERT INTO operations(type, amount, category, date) VALUES($1, $2, $3, $4) RETURNING id, type, amount, category, date`
	statementContext, statementCancel := context.WithTimeout(contextWithTimeout, repository.StatementTimeout)
	defer statementCancel()

	row := repository.Database.QueryRowContext(statementContext, insertSQL, string(newOperation.Type), newOperation.Amount, newOperation.Category, newOperation.Date)
	return scanOperation(row)
}

func (repository *PostgresOperationRepository) DeleteOperation(contextWithTimeout context.Context, identifier int64) (domain.Operation, bool, error) {
	deleteSQL := `DELETE FROM operations WHERE id = $1 RETURNING id, type, amount, category, date`
	deleteContext, deleteCancel := context.WithTimeout(contextWithTimeout, repository.StatementTimeout)
	defer deleteCancel()

	row := repository.Database.QueryRowContext(deleteContext, deleteSQL, identifier)
	return scanDeletedOperation(row)
}

func (repository *PostgresOperationRepository) SumAmountByType(contextWithTimeout context.Context, operationType domain.OperationType) (decimal.Decimal, error) {
	sumSQL := `SELECT COALESCE(SUM(amount), 0) FROM operations WHERE type = $1`
	sumContext, sumCancel := context.WithTimeout(contextWithTimeout, repository.StatementTimeout)
	defer sumCancel()

	row := repository.Database.QueryRowContext(sumContext, sumSQL, string(operationType))
	var totalAmount decimal.Decimal
	scanError := row.Scan(&totalAmount)
	if scanError != nil {
		return decimal.Zero, scanError
	}

	return totalAmount, nil
}

func (repository *PostgresOperationRepository) CountOperations(contextWithTimeout context.Context) (int64, error) {
	countContext, countCancel := context.WithTimeout(contextWithTimeout, repository.StatementTimeout)
	defer countCancel()

	var operationCount int64
	scanError := repository.Database.QueryRowContext(countContext, `SELECT COUNT(*) FROM operations`).Scan(&operationCount)
	if scanError != nil {
		return 0, scanError
	}

	return operationCount, nil
}

type rowScanner interface {
	Scan(destinations ...any) error
}

func scanOperation(row rowScanner) (domain.Operation, error) {
	var operation domain.Operation
	var operationType string
	scanError := row.Scan(&operation.Identifier, &operationType, &operation.Amount, &operation.Category, &operation.Date)
	if scanError != nil {
		return domain.Operation{}, scanError
	}

	operation.Type = domain.OperationType(operationType)
	return operation, nil
}

func scanDeletedOperation(row rowScanner) (domain.Operation, bool, error) {
	deletedOperation, scanError := scanOperation(row)
	if errors.Is(scanError, sql.ErrNoRows) {
		return domain.Operation{}, false, nil
	}
	if scanError != nil {
		return domain.Operation{}, false, scanError
	}

	return deletedOperation, true, nil
}

func scanOperationRows(rows *sql.Rows) ([]domain.Operation, error) {
	operations := make([]domain.Operation, 0)
	for rows.Next() {
		operation, scanError := scanOperation(rows)
		if scanError != nil {
			return nil, scanError
		}
		operations = append(operations, operation)
	}

	return operations, rows.Err()
}
