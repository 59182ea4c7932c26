package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Supported CSV encodings.
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin-1"
)

// CSVOptions tune CSV rendering for downstream spreadsheet imports.
type CSVOptions struct {
	Delimiter rune
	Encoding  string
}

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset, opts CSVOptions) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if opts.Delimiter != 0 {
		writer.Comma = opts.Delimiter
	}
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	switch opts.Encoding {
	case "", EncodingUTF8:
		return buf.Bytes(), nil
	case EncodingLatin1:
		return encodeLatin1(buf.String()), nil
	default:
		return nil, fmt.Errorf("unsupported csv encoding %q", opts.Encoding)
	}
}

// encodeLatin1 maps the string to ISO-8859-1 bytes, substituting '?' for
// runes outside the code page.
func encodeLatin1(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r <= 0xFF {
			out = append(out, byte(r))
		} else {
			out = append(out, '?')
		}
	}
	return out
}
