// Package normalize contains the pure value normalizers applied at the
// spreadsheet boundary. Master workbooks arrive with numeric identifiers
// mangled into scientific notation ("9.91002E+13"), codes with trailing
// ".0" artifacts, categories with single-letter prefixes ("H ASL"), and
// NaN-like sentinel strings in text cells. Everything downstream works on
// the canonical forms produced here.
package normalize

import (
	"math"
	"strconv"
	"strings"
)

// NumericID canonicalizes an identifier cell (center code, agreement code).
// Numeric-like values become their decimal integer string, which removes
// scientific notation and trailing ".0" artifacts; everything else is
// returned trimmed. Idempotent: NumericID(NumericID(x)) == NumericID(x).
func NumericID(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return s
	}
	return strconv.FormatInt(int64(f), 10)
}

// Category canonicalizes a category cell: uppercase, trimmed, and with a
// single-letter leading token dropped ("H ASL" -> "ASL"). Only one prefix
// token is stripped.
func Category(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	parts := strings.SplitN(s, " ", 2)
	if len(parts) == 2 && len(parts[0]) == 1 {
		return strings.TrimSpace(parts[1])
	}
	return s
}

// Float coerces an edited cell to a float64. Unparsable input yields 0.0,
// never an error. Comma decimal separators are accepted.
func Float(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" || isNullish(s) {
		return 0.0
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0.0
	}
	return f
}

// Text coerces an edited cell to a clean string. NaN-like sentinels that
// spreadsheet frameworks stringify ("nan", "None", "<nil>") become the
// empty string rather than surviving as literal text.
func Text(raw string) string {
	s := strings.TrimSpace(raw)
	if isNullish(s) {
		return ""
	}
	return s
}

func isNullish(s string) bool {
	switch strings.ToLower(s) {
	case "nan", "none", "null", "<nil>", "nat":
		return true
	}
	return false
}
