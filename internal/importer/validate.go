package importer

import (
	"fmt"
	"sort"
	"strings"
)

// Record holds the raw field values extracted from one row.
type Record struct {
	Line   int
	Fields map[Field]string
}

func (r Record) Get(f Field) string { return r.Fields[f] }

func (r Record) Name() string        { return r.Fields[FieldName] }
func (r Record) Governorate() string { return r.Fields[FieldGovernorate] }
func (r Record) District() string    { return r.Fields[FieldDistrict] }

// MissingFieldsError reports mandatory fields absent from a row.
type MissingFieldsError struct {
	Line   int
	Fields []Field
}

func (e *MissingFieldsError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f)
	}
	return fmt.Sprintf("row %d: missing %s", e.Line, strings.Join(names, ", "))
}

// Lookup returns the first non-empty value found under any alias of f.
// Headers are compared after lower-casing and normalization. When several
// headers fold to the same alias the leftmost column wins.
func Lookup(row Row, f Field) (string, bool) {
	columns := row.columns()
	for _, alias := range FieldAliases[f] {
		want := headerKey(alias)
		for _, header := range columns {
			if headerKey(header) != want {
				continue
			}
			if v := strings.TrimSpace(row.Values[header]); v != "" {
				return v, true
			}
		}
	}
	return "", false
}

// columns returns the row's headers in column order. Rows built without
// Columns fall back to sorted header text.
func (r Row) columns() []string {
	if r.Columns != nil {
		return r.Columns
	}
	keys := make([]string, 0, len(r.Values))
	for h := range r.Values {
		keys = append(keys, h)
	}
	sort.Strings(keys)
	return keys
}

// Extract pulls every known field out of row. It returns a
// *MissingFieldsError when a mandatory field is absent; the partial record
// is still returned.
func Extract(row Row) (Record, error) {
	rec := Record{Line: row.Line, Fields: make(map[Field]string, len(FieldAliases))}
	for f := range FieldAliases {
		if v, ok := Lookup(row, f); ok {
			rec.Fields[f] = v
		}
	}

	var missing []Field
	for _, f := range MandatoryFields {
		if rec.Fields[f] == "" {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return rec, &MissingFieldsError{Line: row.Line, Fields: missing}
	}
	return rec, nil
}
