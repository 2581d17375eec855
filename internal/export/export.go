// Package export writes every stored operation in JSON, YAML or CSV.
package export

import (
	"context"
	"fmt"
	"io"
	"strings"

	"personal-budget/internal/domain"
)

const exportPageSize = 500

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCSV  = "csv"
)

// Row is the flattened form of an operation shared by every encoder.
type Row struct {
	Identifier int64
	Type       string
	Amount     string
	Category   string
	Date       string
}

type Encoder interface {
	EncodeRows(writer io.Writer, rows []Row) error
}

type OperationLister interface {
	ListOperations(ctx context.Context, skip int, limit int) ([]domain.Operation, error)
}

func EncoderFor(format string) (Encoder, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return JSONEncoder{}, nil
	case FormatYAML, "yml":
		return YAMLEncoder{}, nil
	case FormatCSV:
		return CSVEncoder{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// ExportOperations pages through the store in identifier order and encodes
// every operation. It returns the number of exported rows.
func ExportOperations(ctx context.Context, lister OperationLister, encoder Encoder, writer io.Writer) (int, error) {
	rows := make([]Row, 0)
	for skip := 0; ; skip += exportPageSize {
		operations, listError := lister.ListOperations(ctx, skip, exportPageSize)
		if listError != nil {
			return 0, listError
		}

		for _, operation := range operations {
			rows = append(rows, Row{
				Identifier: operation.Identifier,
				Type:       string(operation.Type),
				Amount:     operation.Amount.String(),
				Category:   operation.Category,
				Date:       operation.Date.String(),
			})
		}

		if len(operations) < exportPageSize {
			break
		}
	}

	encodeError := encoder.EncodeRows(writer, rows)
	if encodeError != nil {
		return 0, fmt.Errorf("encode operations: %w", encodeError)
	}

	return len(rows), nil
}
