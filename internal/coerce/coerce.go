// Package coerce parses locale-noisy numeric cell values. It does no
// clamping; range repair belongs to the auditor.
package coerce

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// Value is the result of coercing one cell. Valid distinguishes "no value"
// from zero; WasBlank distinguishes an empty raw cell from one that was
// present but unparseable.
type Value struct {
	Num      float64
	Valid    bool
	WasBlank bool
}

// Number parses raw into a float, tolerating comma decimals and stray
// symbols (currency marks, spaces, units). It reports no value for blanks,
// parse failures, NaN and infinities.
func Number(raw string) (float64, bool) {
	v := Parse(raw)
	return v.Num, v.Valid
}

// Parse is Number plus blank-origin tracking for price fields.
func Parse(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Value{WasBlank: true}
	}

	s = strings.ReplaceAll(s, ",", ".")
	s = nonNumeric.ReplaceAllString(s, "")

	x, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
		return Value{}
	}
	return Value{Num: x, Valid: true}
}

// OrDefault returns the coerced number, falling back to def when the cell
// held no usable value.
func OrDefault(raw string, def float64) float64 {
	if x, ok := Number(raw); ok {
		return x
	}
	return def
}

// Round rounds x to the given number of decimal places. Negative precision
// leaves x untouched.
func Round(x float64, places int) float64 {
	if places < 0 {
		return x
	}
	shift := math.Pow(10, float64(places))
	return math.Round(x*shift) / shift
}
