package export

import (
	"io"

	"gopkg.in/yaml.v3"
)

type yamlRow struct {
	Identifier int64  `yaml:"id"`
	Type       string `yaml:"type"`
	Amount     string `yaml:"amount"`
	Category   string `yaml:"category"`
	Date       string `yaml:"date"`
}

type YAMLEncoder struct{}

func (YAMLEncoder) EncodeRows(writer io.Writer, rows []Row) error {
	out := make([]yamlRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, yamlRow(row))
	}

	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if encodeError := encoder.Encode(out); encodeError != nil {
		return encodeError
	}
	return encoder.Close()
}
