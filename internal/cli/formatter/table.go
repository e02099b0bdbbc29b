package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TableOption adjusts how RenderTable lays out columns.
type TableOption func(*tableLayout)

type tableLayout struct {
	right map[int]bool
	gap   int
}

// AlignRight right-aligns the given column indexes, typically counts.
func AlignRight(cols ...int) TableOption {
	return func(l *tableLayout) {
		for _, c := range cols {
			l.right[c] = true
		}
	}
}

// RenderTable renders a simple aligned table with a header separator line.
// Headers are rendered with the Header style. Columns are padded to the
// maximum visible width found in each column across both headers and rows.
func RenderTable(headers []string, rows [][]string, opts ...TableOption) string {
	if len(headers) == 0 {
		return ""
	}

	layout := &tableLayout{right: map[int]bool{}, gap: 2}
	for _, opt := range opts {
		opt(layout)
	}

	cols := len(headers)
	widths := make([]int, cols)
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < cols && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style func(string) string) {
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := max(widths[i]-lipgloss.Width(cell), 0)
			if style != nil {
				cell = style(cell)
			}
			if layout.right[i] {
				b.WriteString(strings.Repeat(" ", pad) + cell)
				pad = 0
			} else {
				b.WriteString(cell)
			}
			if i < cols-1 {
				b.WriteString(strings.Repeat(" ", pad+layout.gap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, func(s string) string { return StyleHeader.Render(s) })

	for i, w := range widths {
		b.WriteString(StyleDim.Render(strings.Repeat("─", w)))
		if i < cols-1 {
			b.WriteString(strings.Repeat(" ", layout.gap))
		}
	}
	b.WriteString("\n")

	for _, row := range rows {
		writeRow(row, nil)
	}

	return b.String()
}
