package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for files that are neither xlsx nor csv.
var ErrUnsupportedFormat = errors.New("unsupported import file format")

// ReadMatrix loads the cell matrix of a spreadsheet file, choosing the
// reader by extension.
func ReadMatrix(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx":
		return ReadXLSX(f)
	case ".csv", ".txt":
		return ReadCSV(f)
	default:
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
	}
}

// ReadXLSX returns the raw cell values of the first worksheet. Date cells
// come back as serial numbers.
func ReadXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// ReadCSV reads a comma separated matrix. Ragged rows are allowed.
func ReadCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}
