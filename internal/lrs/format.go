package lrs

import (
	"math"
	"strconv"
	"strings"
)

// DefaultMeasurePrecision is the number of decimal places used for
// measure values when neither the session nor the network configures one.
const DefaultMeasurePrecision = 6

// maxPrecision bounds fixed-point formatting; float64 carries no more
// than 17 significant decimal digits anyway.
const maxPrecision = 20

// safeFixedPrecision is the highest precision at which the scale-and-
// round in FormatFixed stays within float64's integer-exact range.
const safeFixedPrecision = 15

// ClampPrecision bounds a precision to [0, 20].
func ClampPrecision(precision int) int {
	if precision < 0 {
		return 0
	}
	if precision > maxPrecision {
		return maxPrecision
	}
	return precision
}

// FormatFixed formats v with exactly the given number of decimal places,
// rounding halves away from zero, then drops trailing zeros after the
// decimal point. "-0" collapses to "0".
func FormatFixed(v float64, precision int) string {
	precision = ClampPrecision(precision)
	if precision > safeFixedPrecision {
		// Past float64 resolution rounding is a no-op; the shortest
		// round-trip form already carries no trailing zeros.
		return trimFixed(strconv.FormatFloat(v, 'f', -1, 64))
	}
	pow := math.Pow(10, float64(precision))
	scaled := v * pow
	if scaled >= 0 {
		scaled = math.Floor(scaled + 0.5)
	} else {
		scaled = math.Ceil(scaled - 0.5)
	}
	s := strconv.FormatFloat(scaled/pow, 'f', precision, 64)
	return trimFixed(s)
}

func trimFixed(s string) string {
	if strings.ContainsRune(s, '.') {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

// RoundMeasure rounds a measure to the given precision and returns it as
// a plain number, the canonical form used in overlay results.
func RoundMeasure(v float64, precision int) float64 {
	r, err := strconv.ParseFloat(FormatFixed(v, precision), 64)
	if err != nil {
		return v
	}
	return r
}

// ParseNumber parses a measure entered as text. A comma is accepted as
// the decimal mark when the value carries no point. Returns false for
// empty or non-numeric input.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if strings.Count(s, ",") == 1 && !strings.ContainsRune(s, '.') {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// DecimalPlaces returns the number of significant decimal places of v,
// bounded at 20.
func DecimalPlaces(v float64) int {
	s := strconv.FormatFloat(v, 'f', maxPrecision, 64)
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return 0
	}
	frac := strings.TrimRight(s[dot+1:], "0")
	return len(frac)
}
