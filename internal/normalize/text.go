// Package normalize canonicalizes raw spreadsheet cell values before any
// business rule looks at them. Every cleaner is deterministic and
// idempotent: cleaning an already-clean value returns it unchanged.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Private-use stand-ins keep Ñ/ñ out of the accent-stripping transform so
// the eñe survives as a distinct letter instead of folding to N.
const (
	enyeUpperMark = '\uE000'
	enyeLowerMark = '\uE001'
)

var (
	stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	wsRun         = regexp.MustCompile(`\s+`)
	brokenDecimal = regexp.MustCompile(`(\d)\s*\.\s*(\d)`)
	measureSuffix = regexp.MustCompile(`(\d(?:\.\d+)?)\s*(ML|L|G|KG|MG|OZ|LB)\b`)
	nonAlnumSpace = regexp.MustCompile(`[^A-Z0-9Ñ ]+`)
	anyAlnum      = regexp.MustCompile(`[A-Z0-9Ñ]`)
)

// Normalize converts an arbitrary cell value to its canonical upper-case
// form: accents stripped (eñe preserved), internal whitespace collapsed,
// decimals rejoined ("1 . 5" -> "1.5"), and the gap between a number and a
// known measure suffix removed ("500 ML" -> "500ML"). Blank input yields
// the empty string.
func Normalize(v string) string {
	s := strings.TrimSpace(v)
	if s == "" {
		return ""
	}

	s = strings.NewReplacer("Ñ", string(enyeUpperMark), "ñ", string(enyeLowerMark)).Replace(s)
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	s = strings.NewReplacer(string(enyeUpperMark), "Ñ", string(enyeLowerMark), "ñ").Replace(s)

	s = strings.ToUpper(s)
	s = strings.TrimSpace(wsRun.ReplaceAllString(s, " "))
	s = brokenDecimal.ReplaceAllString(s, "$1.$2")
	s = measureSuffix.ReplaceAllString(s, "$1$2")
	return s
}

// CleanAlnumSpaces normalizes and then keeps only letters, digits and
// spaces. Used for product names and descriptions.
func CleanAlnumSpaces(v string) string {
	s := Normalize(v)
	s = nonAlnumSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(wsRun.ReplaceAllString(s, " "))
}

// CleanCategory cleans like CleanAlnumSpaces but collapses values with no
// letter or digit to the empty string so the caller can substitute the
// category sentinel.
func CleanCategory(v string) string {
	s := CleanAlnumSpaces(v)
	if !anyAlnum.MatchString(s) {
		return ""
	}
	return s
}
