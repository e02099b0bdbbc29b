package importer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateStrategy attempts one interpretation of a cell value.
type DateStrategy func(s string) (time.Time, bool)

// IntStrategy attempts one interpretation of a counter cell.
type IntStrategy func(s string) (int, bool)

// DateStrategies are tried in order by ParseDate.
var DateStrategies = []DateStrategy{
	parseSerialDate,
	parseMonthYear,
	parseDateLayouts,
}

// IntStrategies are tried in order by ParseInt.
var IntStrategies = []IntStrategy{
	parsePlainInt,
	parseWholeFloat,
}

// spreadsheetEpoch is day zero of the 1900 date system, shifted to absorb
// the phantom 1900-02-29.
var spreadsheetEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

const maxSerialDay = 2958465 // 9999-12-31

var monthYearRe = regexp.MustCompile(`^(\d{1,2})\s*/\s*(\d{4})$`)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-1-2",
	"2006/1/2",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

var arabicDigits = strings.NewReplacer(
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	"٫", ".", "٬", "",
)

func cleanNumeric(s string) string {
	return strings.TrimSpace(arabicDigits.Replace(s))
}

// ParseDate returns the first successful strategy's result, or nil.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, strategy := range DateStrategies {
		if t, ok := strategy(s); ok {
			return &t
		}
	}
	return nil
}

// ParseInt returns the first successful strategy's result, or 0.
func ParseInt(s string) int {
	s = cleanNumeric(s)
	if s == "" {
		return 0
	}
	for _, strategy := range IntStrategies {
		if n, ok := strategy(s); ok {
			return n
		}
	}
	return 0
}

func parseSerialDate(s string) (time.Time, bool) {
	f, err := strconv.ParseFloat(cleanNumeric(s), 64)
	if err != nil || math.IsNaN(f) || f < 1 || f > maxSerialDay {
		return time.Time{}, false
	}
	days := math.Floor(f)
	secs := math.Round((f - days) * 86400)
	return spreadsheetEpoch.AddDate(0, 0, int(days)).Add(time.Duration(secs) * time.Second), true
}

func parseMonthYear(s string) (time.Time, bool) {
	m := monthYearRe.FindStringSubmatch(cleanNumeric(s))
	if m == nil {
		return time.Time{}, false
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true
}

func parseDateLayouts(s string) (time.Time, bool) {
	s = cleanNumeric(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parsePlainInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func parseWholeFloat(s string) (int, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}
