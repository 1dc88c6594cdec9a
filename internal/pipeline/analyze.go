package pipeline

import (
	"catalogqa/domain/catalog"
	"catalogqa/internal/codes"
	"catalogqa/internal/dedupe"
)

// Analysis is the read-only preview of an upload: cleaned rows, duplicate
// name groups, and a numeric profile of the price columns. Nothing here
// affects a later Run over the same upload.
type Analysis struct {
	Rows          []catalog.Row            `json:"-"`
	HasDuplicates bool                     `json:"has_duplicates"`
	Groups        []catalog.DuplicateGroup `json:"groups"`
	PriceProfile  *PriceProfile            `json:"price_profile,omitempty"`
}

// Analyze cleans the records the same way Run does and reports duplicate
// groups. Codes use the keep-duplicate-but-mark policy: a duplicate code
// stays visible under its original value instead of being regenerated, so
// the preview matches what the user uploaded.
func Analyze(records []catalog.Record, exempt bool) (*Analysis, error) {
	if len(records) == 0 {
		return nil, catalog.ErrNoRows
	}

	rows := buildRows(records, exempt)

	primary := codes.NewRegistry()
	for i := range rows {
		out := codes.ResolveMark(rows[i].Code, primary)
		rows[i].Code = out.Final
	}

	groups := dedupe.Groups(rows)

	return &Analysis{
		Rows:          rows,
		HasDuplicates: len(groups) > 0,
		Groups:        groups,
		PriceProfile:  ProfilePrices(rows),
	}, nil
}
