package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"personal-budget/internal/domain"
)

// SQLiteOperationRepository stores amounts as decimal text, so sums are
// computed in Go rather than with SQLite's floating point SUM.
type SQLiteOperationRepository struct {
	Database         *sql.DB
	StatementTimeout time.Duration
}

func NewSQLiteOperationRepository(database *sql.DB, statementTimeout time.Duration) *SQLiteOperationRepository {
	if statementTimeout <= 0 {
		statementTimeout = defaultStatementTimeout
	}
	return &SQLiteOperationRepository{Database: database, StatementTimeout: statementTimeout}
}

func (repository *SQLiteOperationRepository) ListOperations(contextWithTimeout context.Context, skip int, limit int) ([]domain.Operation, error) {
	querySQL := `SELECT id, type, amount, category, date FROM operations ORDER BY id ASC LIMIT ? OFFSET ?`
	queryContext, queryCancel := context.WithTimeout(contextWithTimeout, repository.StatementTimeout)
	defer queryCancel()

	rows, queryError := repository.Database.QueryContext(queryContext, querySQL, limit, skip)
	if queryError != nil {
		return nil, queryError
	}
	defer rows.Close()

	return scanOperationRows(rows)
}

func (repository *SQLiteOperationRepository) CreateOperation(contextWithTimeout context.Context, newOperation domain.NewOperation) (domain.Operation, error) {
	insertSQL := `INSERT INTO operations(type, amount, category, date) VALUES(?, ?, ?, ?) RETURNING id, type, amount, category, date`
	statementContext, statementCancel := context.WithTimeout(contextWithTimeout, repository.StatementTimeout)
	defer statementCancel()

	row := repository.Database.QueryRowContext(statementContext, insertSQL, string(newOperation.Type), newOperation.Amount.String(), newOperation.Category, newOperation.Date.String())
	return scanOperation(row)
}

func (repository *SQLiteOperationRepository) DeleteOperation(contextWithTimeout context.Context, identifier int64) (domain.Operation, bool, error) {
	deleteSQL := `DELETE FROM operations WHERE id = ? RETURNING id, type, amount, category, date`
	deleteContext, deleteCancel := context.WithTimeout(contextWithTimeout, repository.StatementTimeout)
	defer deleteCancel()

	row := repository.Database.QueryRowContext(deleteContext, deleteSQL, identifier)
	return scanDeletedOperation(row)
}

func (repository *SQLiteOperationRepository) SumAmountByType(contextWithTimeout context.Context, operationType domain.OperationType) (decimal.Decimal, error) {
	querySQL := `SELECT amount FROM operations WHERE type = ?`
	queryContext, queryCancel := context.WithTimeout(contextWithTimeout, repository.StatementTimeout)
	defer queryCancel()

	rows, queryError := repository.Database.QueryContext(queryContext, querySQL, string(operationType))
	if queryError != nil {
		return decimal.Zero, queryError
	}
	defer rows.Close()

	totalAmount := decimal.Zero
	for rows.Next() {
		var amount decimal.Decimal
		scanError := rows.Scan(&amount)
		if scanError != nil {
			return decimal.Zero, scanError
		}
		totalAmount = totalAmount.Add(amount)
	}

	return totalAmount, rows.Err()
}

func (repository *SQLiteOperationRepository) CountOperations(contextWithTimeout context.Context) (int64, error) {
	countContext, countCancel := context.WithTimeout(contextWithTimeout, repository.StatementTimeout)
	defer countCancel()

	var operationCount int64
	scanError := repository.Database.QueryRowContext(countContext, `SELECT COUNT(*) FROM operations`).Scan(&operationCount)
	if scanError != nil {
		return 0, scanError
	}

	return operationCount, nil
}
