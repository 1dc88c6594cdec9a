// Package codes validates, repairs and generates product identifiers
// under per-run uniqueness registries.
package codes

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"

	"catalogqa/internal/normalize"
)

// GeneratedPrefix starts every auto-generated code.
const GeneratedPrefix = "CM"

const (
	generatedSuffixLen = 10
	minCodeLen         = 4
	codeAlphabet       = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var nonAlnum = regexp.MustCompile(`[^A-Z0-9]+`)

// Registry is the set of codes already assigned within one pipeline run.
// Each code kind (primary, barcode, parent) gets its own registry because
// each has an independent uniqueness domain. Never shared across runs.
type Registry struct {
	seen map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]bool)}
}

func (r *Registry) Has(code string) bool { return r.seen[code] }

func (r *Registry) Add(code string) { r.seen[code] = true }

func (r *Registry) Len() int { return len(r.seen) }

// Clean reduces a raw cell to its alphanumeric-only canonical form.
func Clean(raw string) string {
	return nonAlnum.ReplaceAllString(normalize.Normalize(raw), "")
}

// Valid reports whether a cleaned code is acceptable: at least four
// alphanumeric characters.
func Valid(code string) bool {
	return len(code) >= minCodeLen
}

// Reason explains how a code was resolved, for operator-facing tracking.
type Reason string

const (
	ReasonValid        Reason = "VALID"
	ReasonEmpty        Reason = "EMPTY"
	ReasonInvalidChars Reason = "INVALID_CHARS"
	ReasonTooShort     Reason = "TOO_SHORT"
	ReasonDuplicate    Reason = "DUPLICATE"
)

// Outcome records one code resolution.
type Outcome struct {
	Original  string
	Final     string
	Generated bool
	Duplicate bool
	Reason    Reason
}

// Resolve applies the generate-on-invalid policy used for the primary
// product code: accept and register a clean, unseen code of valid length;
// otherwise mint a fresh unique code. Generated outcomes feed the
// codes_fixed counter.
func Resolve(raw string, reg *Registry) Outcome {
	out := Outcome{Original: strings.TrimSpace(raw)}

	if out.Original == "" {
		out.Final = Generate(reg)
		out.Generated = true
		out.Reason = ReasonEmpty
		return out
	}

	c := Clean(raw)
	switch {
	case c == "":
		out.Reason = ReasonInvalidChars
	case len(c) < minCodeLen:
		out.Reason = ReasonTooShort
	case reg.Has(c):
		out.Reason = ReasonDuplicate
	default:
		reg.Add(c)
		out.Final = c
		out.Reason = ReasonValid
		return out
	}

	out.Final = Generate(reg)
	out.Generated = true
	return out
}

// ResolveBlank applies the blank-on-invalid policy used for barcodes and
// parent codes: invalid or duplicate values resolve to the empty string
// with no generation and no row-level error.
func ResolveBlank(raw string, reg *Registry) string {
	c := Clean(raw)
	if !Valid(c) || reg.Has(c) {
		return ""
	}
	reg.Add(c)
	return c
}

// ResolveMark applies the keep-duplicate-but-mark policy used only by the
// read-only analysis view: a duplicate keeps its original cleaned value
// and is flagged, without mutating the registry, so duplicate detection
// cannot interfere with code assignment in the main pass.
func ResolveMark(raw string, reg *Registry) Outcome {
	c := Clean(raw)
	if Valid(c) && reg.Has(c) {
		return Outcome{Original: strings.TrimSpace(raw), Final: c, Duplicate: true, Reason: ReasonDuplicate}
	}
	return Resolve(raw, reg)
}

// Generate mints a prefix + 10 random upper-alphanumeric code, retried
// until it is absent from the registry, then registers it.
func Generate(reg *Registry) string {
	for {
		c := GeneratedPrefix + randomSuffix(generatedSuffixLen)
		if !reg.Has(c) {
			reg.Add(c)
			return c
		}
	}
}

func randomSuffix(n int) string {
	max := big.NewInt(int64(len(codeAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is broken;
			// fall back to a fixed character rather than panic mid-run.
			b[i] = codeAlphabet[0]
			continue
		}
		b[i] = codeAlphabet[idx.Int64()]
	}
	return string(b)
}
