package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMatrix_HeaderAfterTitleRows(t *testing.T) {
	matrix := [][]string{
		{"كشف نقاط الخدمة 2024"},
		{""},
		{" الاسم ", "المحافظة", "المديرية", "الهاتف"},
		{"A", "صنعاء", "الوحدة", "777"},
		{"", "", "", ""},
		{"B", "عدن", "كريتر"},
	}

	sheet := ParseMatrix(matrix)

	assert.True(t, sheet.HeaderFound)
	assert.Equal(t, 3, sheet.HeaderLine)
	assert.Equal(t, []string{"الاسم", "المحافظة", "المديرية", "الهاتف"}, sheet.Headers)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, 4, sheet.Rows[0].Line)
	assert.Equal(t, "A", sheet.Rows[0].Values["الاسم"])
	assert.Equal(t, "777", sheet.Rows[0].Values["الهاتف"])
	assert.Equal(t, 6, sheet.Rows[1].Line)
	_, hasPhone := sheet.Rows[1].Values["الهاتف"]
	assert.False(t, hasPhone, "short rows leave trailing columns absent")
}

func TestParseMatrix_HeaderKeywordVariantSpelling(t *testing.T) {
	sheet := ParseMatrix([][]string{
		{"report"},
		{"Name", "Governorate", "District"},
		{"x", "y", "z"},
	})
	assert.True(t, sheet.HeaderFound)
	assert.Equal(t, 2, sheet.HeaderLine)
	require.Len(t, sheet.Rows, 1)
}

func TestParseMatrix_FallsBackToFirstRow(t *testing.T) {
	sheet := ParseMatrix([][]string{
		{"col1", "col2"},
		{"a", "b"},
	})
	assert.False(t, sheet.HeaderFound)
	assert.Equal(t, 1, sheet.HeaderLine)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, "b", sheet.Rows[0].Values["col2"])
}

func TestParseMatrix_Empty(t *testing.T) {
	sheet := ParseMatrix(nil)
	assert.Empty(t, sheet.Rows)
	assert.False(t, sheet.HeaderFound)
}

func TestParseMatrix_DuplicateHeaderKeepsFirstColumn(t *testing.T) {
	sheet := ParseMatrix([][]string{
		{"name", "name"},
		{"first", "second"},
	})
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, "first", sheet.Rows[0].Values["name"])
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "planned", PhasePlanned.String())
	assert.Equal(t, "cancelled", PhaseCancelled.String())
	assert.Equal(t, "unknown", Phase(99).String())
}

func TestParseMatrix_RowsKeepColumnOrder(t *testing.T) {
	sheet := ParseMatrix([][]string{
		{"اسم النقطة", "المحافظه", "", "المحافظة"},
		{"A", "صنعاء", "x", "عدن"},
	})

	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, []string{"اسم النقطة", "المحافظه", "المحافظة"}, sheet.Rows[0].Columns)

	v, ok := Lookup(sheet.Rows[0], FieldGovernorate)
	require.True(t, ok)
	assert.Equal(t, "صنعاء", v)
}
