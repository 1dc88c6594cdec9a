package excel

import (
	"strings"

	"catalogqa/domain/catalog"
	"catalogqa/internal/normalize"
)

// matchTerms maps each canonical field to the header phrases that identify
// its column. Matching is a case- and accent-insensitive substring test on
// the normalized header, so "  Code Of Product " and "CODE OF PRODUCT (SKU)"
// both resolve to FieldCode. Order matters where one phrase contains
// another: specific phrases are listed before generic ones.
var matchTerms = map[catalog.Field][]string{
	catalog.FieldCode:        {"CODE OF PRODUCT"},
	catalog.FieldBarcode:     {"BARCODE"},
	catalog.FieldParentCode:  {"PARENT CODE"},
	catalog.FieldName:        {"NAME OF PRODUCT"},
	catalog.FieldDescription: {"DESCRIPTION"},
	catalog.FieldCategory:    {"CATEGORY"},
	catalog.FieldCost:        {"COST PRICE"},
	catalog.FieldSalePrice:   {"MAIN SALE PRICE"},
	catalog.FieldUnit:        {"UNIT"},
	catalog.FieldStock:       {"STOCK", "QUANTITY"},
	catalog.FieldStockMin:    {"MINIMUM STOCK"},
	catalog.FieldBrand:       {"BRAND"},
	catalog.FieldModel:       {"MODEL"},
	catalog.FieldStorable:    {"STORABLE"},
	catalog.FieldCostPercent: {"COST PERCENT", "PERCENT"},
}

// resolveOrder fixes the field resolution order so fields whose phrases
// overlap ("MINIMUM STOCK" vs "STOCK", "COST PERCENT" vs "COST PRICE")
// claim their column before the looser match runs.
var resolveOrder = []catalog.Field{
	catalog.FieldParentCode,
	catalog.FieldBarcode,
	catalog.FieldCode,
	catalog.FieldName,
	catalog.FieldDescription,
	catalog.FieldCategory,
	catalog.FieldCostPercent,
	catalog.FieldCost,
	catalog.FieldSalePrice,
	catalog.FieldUnit,
	catalog.FieldStockMin,
	catalog.FieldStock,
	catalog.FieldBrand,
	catalog.FieldModel,
	catalog.FieldStorable,
}

// Columns maps canonical fields to their column index in a header row.
type Columns map[catalog.Field]int

// Index returns the column index for a field and whether it was found.
func (c Columns) Index(f catalog.Field) (int, bool) {
	idx, ok := c[f]
	return idx, ok
}

// Has reports whether a field's column exists in the source sheet.
func (c Columns) Has(f catalog.Field) bool {
	_, ok := c[f]
	return ok
}

// ResolveColumns matches a header row against the canonical field contract.
// Each source column is claimed by at most one field; the first header
// containing a field's phrase wins for that field.
func ResolveColumns(headers []string) Columns {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalize.Normalize(h)
	}

	cols := make(Columns)
	claimed := make(map[int]bool)

	for _, field := range resolveOrder {
		for _, term := range matchTerms[field] {
			found := -1
			for i, header := range normalized {
				if claimed[i] || header == "" {
					continue
				}
				if strings.Contains(header, term) {
					found = i
					break
				}
			}
			if found >= 0 {
				cols[field] = found
				claimed[found] = true
				break
			}
		}
	}
	return cols
}
