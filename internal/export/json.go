package export

import (
	"encoding/json"
	"io"
)

type jsonRow struct {
	Identifier int64       `json:"id"`
	Type       string      `json:"type"`
	Amount     json.Number `json:"amount"`
	Category   string      `json:"category"`
	Date       string      `json:"date"`
}

type JSONEncoder struct{}

func (JSONEncoder) EncodeRows(writer io.Writer, rows []Row) error {
	out := make([]jsonRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, jsonRow{
			Identifier: row.Identifier,
			Type:       row.Type,
			Amount:     json.Number(row.Amount),
			Category:   row.Category,
			Date:       row.Date,
		})
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
