package intake

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXReader reads the first sheet of an Office Open XML workbook.
type XLSXReader struct{}

// Format returns the reader name.
func (x *XLSXReader) Format() Format { return FormatXLSX }

// ReadHeader returns the first row of the first sheet.
func (x *XLSXReader) ReadHeader(data []byte) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return nil, rows.Error()
	}
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading header row: %w", err)
	}
	return trimCells(cols), nil
}

// ReadTable returns every row of the first sheet.
func (x *XLSXReader) ReadTable(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	for i := range rows {
		rows[i] = trimCells(rows[i])
	}
	return rows, nil
}
