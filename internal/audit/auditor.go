// Package audit evaluates per-row business invariants. A row is never
// dropped: findings classify it as corrected, and range violations are
// clamped in place.
package audit

import (
	"fmt"
	"strings"

	"catalogqa/domain/catalog"
)

// Result carries the findings of one audit pass over one row. Corrected
// reports whether any blocking finding occurred; the category-default
// warning is informational and never flips the classification by itself.
type Result struct {
	Findings  []catalog.ValidationError
	Corrected bool
}

func (r *Result) push(row *catalog.Row, field catalog.Field, value interface{}, kind catalog.ErrorKind, fix interface{}, comment string) {
	r.Findings = append(r.Findings, catalog.ValidationError{
		Code:     row.Code,
		Location: Location(row.ID, field),
		Value:    value,
		Kind:     kind,
		Fix:      fix,
		Comment:  comment,
	})
}

// Location renders the "row / column" reference used in the error sheet.
// It uses the stable row id, so references stay correct after duplicate
// filtering.
func Location(id catalog.RowID, field catalog.Field) string {
	return fmt.Sprintf("%d / %s", id, field)
}

// Repair runs the pre-tax audit steps: required-field checks, the
// category-default warning, and the self-correcting range clamps for
// stock, cost and sale price. Clamps mutate the row.
func Repair(row *catalog.Row) Result {
	var res Result

	if strings.TrimSpace(row.Code) == "" {
		res.Corrected = true
		res.push(row, catalog.FieldCode, "", catalog.KindCodeEmpty, row.Code, "Code is required.")
	}

	if strings.TrimSpace(row.Name) == "" {
		res.Corrected = true
		res.push(row, catalog.FieldName, "", catalog.KindNameEmpty, "", "Name is required.")
	}

	if strings.TrimSpace(row.Unit) == "" {
		res.Corrected = true
		res.push(row, catalog.FieldUnit, "", catalog.KindUnitEmpty, catalog.DefaultUnit,
			fmt.Sprintf("Unit is required. %s assigned.", catalog.DefaultUnit))
	}

	if strings.TrimSpace(row.Category) == catalog.DefaultCategory {
		// Informational: the sentinel was already substituted upstream.
		res.push(row, catalog.FieldCategory, "", catalog.KindCategoryDefaulted, catalog.DefaultCategory,
			"Default assigned for empty or invalid category.")
	}

	if row.Stock < 0 {
		res.Corrected = true
		res.push(row, catalog.FieldStock, row.Stock, catalog.KindStockNegative, 0.0,
			"Stock cannot be negative. Adjusted to 0.")
		row.Stock = 0
	}

	if row.Cost < 0 {
		res.Corrected = true
		res.push(row, catalog.FieldCost, row.Cost, catalog.KindCostNegative, 0.0,
			"Minimum cost is 0. Adjusted to 0.")
		row.Cost = 0
	}

	if row.SalePrice < 1 {
		res.Corrected = true
		res.push(row, catalog.FieldSalePrice, row.SalePrice, catalog.KindSaleBelowMinimum, 1.0,
			"Minimum sale price is 1. Adjusted to 1.")
		row.SalePrice = 1
	}

	return res
}

// FlagMargin runs the post-tax margin check: a sale price at or below cost
// is flagged but never adjusted, so partially corrected prices are
// surfaced without silently rewriting the price relationship.
func FlagMargin(row *catalog.Row) Result {
	var res Result
	if row.SalePrice <= row.Cost {
		comment := "Rule: sale price must exceed cost. Not adjusted automatically."
		if row.SaleWasBlank {
			comment = "Sale price defaulted from a blank cell and does not exceed cost. Not adjusted automatically."
		}
		res.Corrected = true
		res.push(row, catalog.FieldSalePrice, row.SalePrice, catalog.KindSaleNotAboveCost, row.SalePrice, comment)
	}
	return res
}
