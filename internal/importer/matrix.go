package importer

import "strings"

// Row is one data row keyed by trimmed header text. Columns lists the
// headers in column order.
type Row struct {
	Line    int // 1-based position in the source matrix
	Values  map[string]string
	Columns []string
}

// Sheet is a parsed cell matrix.
type Sheet struct {
	Headers     []string
	HeaderLine  int
	HeaderFound bool
	Rows        []Row
}

// ParseMatrix locates the header row and converts every following row into a
// header-keyed map. When no row carries a known header keyword the first row
// is used as the header. Rows with no non-blank cell are skipped.
func ParseMatrix(matrix [][]string) *Sheet {
	sheet := &Sheet{}
	if len(matrix) == 0 {
		return sheet
	}

	headerIdx := 0
	for i, row := range matrix {
		if isHeaderRow(row) {
			headerIdx = i
			sheet.HeaderFound = true
			break
		}
	}

	sheet.HeaderLine = headerIdx + 1
	sheet.Headers = make([]string, len(matrix[headerIdx]))
	for i, h := range matrix[headerIdx] {
		sheet.Headers[i] = strings.TrimSpace(h)
	}

	for i := headerIdx + 1; i < len(matrix); i++ {
		cells := matrix[i]
		if isBlankRow(cells) {
			continue
		}
		values := make(map[string]string, len(sheet.Headers))
		var columns []string
		for col, h := range sheet.Headers {
			if h == "" || col >= len(cells) {
				continue
			}
			if _, dup := values[h]; dup {
				continue
			}
			values[h] = cells[col]
			columns = append(columns, h)
		}
		sheet.Rows = append(sheet.Rows, Row{Line: i + 1, Values: values, Columns: columns})
	}
	return sheet
}

func isHeaderRow(cells []string) bool {
	for _, c := range cells {
		key := headerKey(c)
		if key == "" {
			continue
		}
		for _, kw := range headerKeywords {
			if key == kw {
				return true
			}
		}
	}
	return false
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
