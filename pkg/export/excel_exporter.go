package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExcelExporter renders Dataset records into an XLSX workbook.
type ExcelExporter struct {
	sheet string
}

// NewExcelExporter builds an Excel exporter writing to the given sheet name.
func NewExcelExporter(sheet string) *ExcelExporter {
	if sheet == "" {
		sheet = "Records"
	}
	return &ExcelExporter{sheet: sheet}
}

// Render produces XLSX workbook bytes for the dataset.
func (e *ExcelExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one header")
	}
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	index, err := f.NewSheet(e.sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if e.sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	for i, header := range data.Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell name: %w", err)
		}
		if err := f.SetCellValue(e.sheet, cell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for rowIdx, row := range data.Rows {
		for colIdx, header := range data.Headers {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(e.sheet, cell, row[header]); err != nil {
				return nil, fmt.Errorf("write cell: %w", err)
			}
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
