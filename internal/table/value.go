package table

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Canonical textual encodings for typed cells. Raw Olist extracts carry
// timestamps as "2006-01-02 15:04:05"; date-only columns (and the date
// dimension) use "2006-01-02". Stage boundaries round-trip through CSV,
// so the value accessors below accept either the typed cell or its
// textual encoding.
const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
)

// Date is a calendar day with no time component. It exists so the CSV
// writer can tell "write date-only" apart from "write full timestamp".
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String formats the day as "2006-01-02".
func (d Date) String() string { return d.Time().Format(DateLayout) }

// Absent reports whether the cell carries no value.
func Absent(v any) bool { return v == nil }

// String returns the cell as a string. Absent cells and non-string cells
// report false. An empty string is still a present value; blanking is
// the cleaners' decision, not the accessor's.
func String(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// Time returns the cell as a timestamp. String cells are parsed with the
// canonical timestamp layout, falling back to date-only. Unparsable and
// absent cells report false; malformed temporal data is coerced to
// absent, never raised as an error.
func Time(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case Date:
		return t.Time(), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		if ts, err := time.Parse(TimestampLayout, s); err == nil {
			return ts, true
		}
		if ts, err := time.Parse(DateLayout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// Decimal returns the cell as an exact decimal. String cells are parsed;
// int64 and float64 cells are converted. Unparsable and absent cells
// report false.
func Decimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t, true
	case int64:
		return decimal.NewFromInt(t), true
	case float64:
		return decimal.NewFromFloat(t), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return decimal.Decimal{}, false
		}
		if d, err := decimal.NewFromString(s); err == nil {
			return d, true
		}
	}
	return decimal.Decimal{}, false
}

// Int returns the cell as an int64. Decimal-looking strings ("1.0") are
// accepted when they carry no fractional part, since aggregates written
// to CSV may round-trip through a decimal representation.
func Int(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		if d, err := decimal.NewFromString(s); err == nil && d.IsInteger() {
			return d.IntPart(), true
		}
	case float64:
		if t == float64(int64(t)) {
			return int64(t), true
		}
	}
	return 0, false
}

// Float returns the cell as a float64.
func Float(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// Bool returns the cell as a boolean. "true"/"false" string forms are
// accepted for CSV round-trips.
func Bool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.TrimSpace(strings.ToLower(t)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

// After reports whether both cells are present timestamps and a is
// strictly later than b. Any absent (or unparsable) side yields false:
// the invalid-sequence mask in the orders cleaner relies on this so rows
// with missing intermediate timestamps are not masked.
func After(a, b any) bool {
	ta, okA := Time(a)
	tb, okB := Time(b)
	return okA && okB && ta.After(tb)
}

// DaysBetween returns the whole-day difference a − b, floored (so
// −36 hours is −2 days, matching timedelta day semantics). If either
// side is absent the result is absent.
func DaysBetween(a, b any) (int64, bool) {
	ta, okA := Time(a)
	tb, okB := Time(b)
	if !okA || !okB {
		return 0, false
	}
	secs := int64(ta.Sub(tb) / time.Second)
	days := secs / 86400
	if secs%86400 != 0 && secs < 0 {
		days--
	}
	return days, true
}
