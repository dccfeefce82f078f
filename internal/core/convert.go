package core

// convert.go provides the coercion helpers used to bring raw values to
// their declared types.
//
// These functions handle the messy reality of exported business data:
//   - Multiple date formats (US, EU, ISO, timestamps)
//   - Currency symbols and thousand separators in numbers
//   - Numbers that arrive as JSON literals or as CSV text
//
// Parsers report success with a bool. Coerce turns a failed parse into a
// documented default so no caller ever sees a parse error.

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// MaxExponent bounds the decimal exponent of a parsed number. Anything beyond
// it is outside the float64 range, and rescaling it would cost time and
// memory proportional to the exponent.
const MaxExponent = 400

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

// Date layouts split by year format for proper 2-digit year handling
var (
	timestampLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"1/2/2006 15:04",
		"1/2/2006 15:04:05",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"2006-01-02", "2006/01/02", "2006.01.02",
		"Jan 2, 2006", "2 Jan 2006", "January 2, 2006",
		"20060102",
	}
)

// Coerce parses v with parse and returns def when v is missing or the
// parse fails. It is the single place where bad data turns into defaults.
func Coerce[T any](v Value, parse func(Value) (T, bool), def T) T {
	if v.Missing() {
		return def
	}
	out, ok := parse(v)
	if !ok {
		return def
	}
	return out
}

// NonNegative wraps a numeric parser so negative results count as failures.
func NonNegative[T int64 | float64](parse func(Value) (T, bool)) func(Value) (T, bool) {
	return func(v Value) (T, bool) {
		n, ok := parse(v)
		if !ok || n < 0 {
			return 0, false
		}
		return n, true
	}
}

// ParseDecimal parses numeric text or a numeric literal into a decimal.
// Handles currency symbols, thousands separators, and accounting format
// (parentheses for negative). Booleans and exponents beyond MaxExponent
// are rejected.
func ParseDecimal(v Value) (decimal.Decimal, bool) {
	if v.Kind != KindString && v.Kind != KindNumber {
		return decimal.Decimal{}, false
	}
	s := cleanNumeric(v.Text)
	if !numericRegex.MatchString(s) {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if exp := d.Exponent(); exp > MaxExponent || exp < -MaxExponent {
		return decimal.Decimal{}, false
	}
	return d, true
}

// ParseFloat parses v as a float64. Values outside the float64 range fail.
func ParseFloat(v Value) (float64, bool) {
	d, ok := ParseDecimal(v)
	if !ok {
		return 0, false
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseInt parses v as an int64. Fractional values truncate toward zero.
func ParseInt(v Value) (int64, bool) {
	d, ok := ParseDecimal(v)
	if !ok {
		return 0, false
	}
	i := d.Truncate(0)
	if !i.BigInt().IsInt64() {
		return 0, false
	}
	return i.IntPart(), true
}

// ParseDate parses v as a calendar date; any time-of-day is discarded.
// Supports multiple date formats and handles 2-digit years with pivot.
func ParseDate(v Value) (pgtype.Date, bool) {
	if v.Kind != KindString {
		return pgtype.Date{Valid: false}, false
	}
	s := strings.TrimSpace(v.Text)
	if s == "" {
		return pgtype.Date{Valid: false}, false
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOf(t), true
		}
	}

	// Try 4-digit year layouts first (unambiguous)
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOf(t), true
		}
	}

	// Try 2-digit year layouts with pivot year adjustment
	pivotYear := time.Now().Year() + TwoDigitYearPivot

	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return dateOf(t), true
		}
	}

	return pgtype.Date{Valid: false}, false
}

// ParseText renders any present value as text.
func ParseText(v Value) (string, bool) {
	return v.Text, true
}

// IsNumeric reports whether s parses as a number after cleanup.
func IsNumeric(s string) bool {
	_, ok := ParseDecimal(String(s))
	return ok
}

// IsInteger reports whether s parses as a whole number after cleanup.
func IsInteger(s string) bool {
	d, ok := ParseDecimal(String(s))
	return ok && d.Equal(d.Truncate(0))
}

// cleanNumeric strips currency symbols, thousands separators and the
// accounting-negative parentheses.
func cleanNumeric(s string) string {
	s = strings.TrimSpace(s)

	// Detect negative accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	// Remove common currency symbols and thousands separators
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}
	return s
}

func dateOf(t time.Time) pgtype.Date {
	y, m, d := t.Date()
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}
