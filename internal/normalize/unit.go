package normalize

import (
	"regexp"
	"strings"

	"catalogqa/domain/catalog"
)

// unitAbbrev maps common abbreviations to their full unit word.
var unitAbbrev = map[string]string{
	"UND":  "UNIDAD",
	"UNID": "UNIDAD",
	"UNI":  "UNIDAD",
	"U":    "UNIDAD",
	"PAQ":  "PAQUETE",
	"PAQT": "PAQUETE",
	"PAQU": "PAQUETE",
	"BOT":  "BOTELLA",
	"BT":   "BOTELLA",
	"SAC":  "SACO",
	"CJ":   "CAJA",
	"CAJ":  "CAJA",
	"BOL":  "BOLSA",
}

// allowedUnits is the closed business vocabulary. Anything outside it
// collapses to the default unit rather than passing through.
var allowedUnits = map[string]bool{
	"UNIDAD":  true,
	"PAQUETE": true,
	"BOTELLA": true,
	"SACO":    true,
	"CAJA":    true,
	"BOLSA":   true,
}

var (
	unitSeparators = regexp.MustCompile(`[.\-_/\\()]+`)
	anyDigit       = regexp.MustCompile(`\d`)
	nonUnitLetter  = regexp.MustCompile(`[^A-Z Ñ ]`)
	nonLetter      = regexp.MustCompile(`[^A-ZÑ]`)
)

// CleanUnit resolves a raw unit cell to one of the allowed unit words.
// Empty input yields the default unit. Values with digits or symbols are
// scanned token by token for a known abbreviation ("12 UND" -> "UNIDAD");
// pure-letter values expand single-token abbreviations and otherwise must
// match the allow-list exactly, else the default unit is returned.
func CleanUnit(v string) string {
	s := Normalize(v)
	if s == "" {
		return catalog.DefaultUnit
	}

	s = unitSeparators.ReplaceAllString(s, " ")
	s = strings.TrimSpace(wsRun.ReplaceAllString(s, " "))

	hasDigits := anyDigit.MatchString(s)
	hasSymbols := nonUnitLetter.MatchString(s)
	tokens := strings.Fields(s)

	if hasDigits || hasSymbols {
		for _, t := range tokens {
			if full, ok := unitAbbrev[nonLetter.ReplaceAllString(t, "")]; ok {
				return full
			}
		}
		return catalog.DefaultUnit
	}

	if len(tokens) == 1 {
		if full, ok := unitAbbrev[tokens[0]]; ok {
			return full
		}
	}

	if candidate := strings.Join(tokens, " "); allowedUnits[candidate] {
		return candidate
	}
	return catalog.DefaultUnit
}
