package export

import (
	"encoding/csv"
	"io"
	"strconv"
)

type CSVEncoder struct{}

func (CSVEncoder) EncodeRows(writer io.Writer, rows []Row) error {
	csvWriter := csv.NewWriter(writer)
	if writeError := csvWriter.Write([]string{"id", "type", "amount", "category", "date"}); writeError != nil {
		return writeError
	}

	for _, row := range rows {
		record := []string{strconv.FormatInt(row.Identifier, 10), row.Type, row.Amount, row.Category, row.Date}
		if writeError := csvWriter.Write(record); writeError != nil {
			return writeError
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}
