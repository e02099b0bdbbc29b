// Package importer turns raw spreadsheet cell matrices into header-keyed
// rows and typed service point records.
package importer

import (
	"strings"

	"github.com/alexanderramin/taxonomy/internal/taxonomy"
)

// Field identifies a logical column of a service point sheet.
type Field string

const (
	FieldName        Field = "name"
	FieldGovernorate Field = "governorate"
	FieldDistrict    Field = "district"
	FieldAddress     Field = "address"
	FieldPhone       Field = "phone"
	FieldOwner       Field = "owner"
	FieldCategory    Field = "category"
	FieldStartDate   Field = "start_date"
	FieldEmployees   Field = "employee_count"
	FieldDevices     Field = "device_count"
	FieldNotes       Field = "notes"
)

// MandatoryFields must all be present for a row to be imported.
var MandatoryFields = []Field{FieldName, FieldGovernorate, FieldDistrict}

// FieldAliases maps each field to the headers it may appear under, in
// priority order. The first alias present with a non-empty value wins.
var FieldAliases = map[Field][]string{
	FieldName:        {"اسم نقطة الخدمة", "اسم النقطة", "اسم الوكيل", "الاسم", "name", "point name"},
	FieldGovernorate: {"المحافظة", "المحافظه", "محافظة", "governorate", "province"},
	FieldDistrict:    {"المديرية", "المديريه", "مديرية", "district"},
	FieldAddress:     {"العنوان", "الموقع", "address", "location"},
	FieldPhone:       {"رقم الهاتف", "الهاتف", "رقم التلفون", "phone", "mobile"},
	FieldOwner:       {"اسم المالك", "المالك", "owner"},
	FieldCategory:    {"التصنيف", "الفئة", "النوع", "category", "type"},
	FieldStartDate:   {"تاريخ البدء", "تاريخ الافتتاح", "تاريخ التشغيل", "start date", "opened"},
	FieldEmployees:   {"عدد الموظفين", "الموظفين", "employees"},
	FieldDevices:     {"عدد الأجهزة", "الأجهزة", "devices"},
	FieldNotes:       {"ملاحظات", "notes", "remarks"},
}

// headerKeywords are the tokens that mark a row as the header row.
var headerKeywords = func() []string {
	var kw []string
	for _, f := range MandatoryFields {
		for _, alias := range FieldAliases[f] {
			kw = append(kw, headerKey(alias))
		}
	}
	return kw
}()

// headerKey is the form headers and aliases are compared in.
func headerKey(s string) string {
	return taxonomy.Normalize(strings.ToLower(s))
}

// Phase is the state of an import run.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseParsed
	PhasePlanned
	PhaseReconciling
	PhaseDone
	PhaseCancelled
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseParsed:
		return "parsed"
	case PhasePlanned:
		return "planned"
	case PhaseReconciling:
		return "reconciling"
	case PhaseDone:
		return "done"
	case PhaseCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
