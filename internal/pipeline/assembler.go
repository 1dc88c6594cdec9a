// Package pipeline assembles cleaned, audited catalogs from raw
// spreadsheet records. One Run call is one isolated pipeline run: fresh
// code registries, fresh stats, fixed stage order.
package pipeline

import (
	"strings"

	"catalogqa/domain/catalog"
	"catalogqa/internal/audit"
	"catalogqa/internal/codes"
	"catalogqa/internal/coerce"
	"catalogqa/internal/dedupe"
	"catalogqa/internal/normalize"
	"catalogqa/internal/tax"
)

// Options configures a pipeline run. Selected == nil means duplicate
// filtering was not requested; an empty non-nil map drops every duplicate
// row.
type Options struct {
	ApplyTaxCost bool
	ApplyTaxSale bool
	Exempt       bool

	// Round is the decimal place count for the final rounding pass.
	// Negative disables rounding.
	Round int

	Selected map[catalog.RowID]bool
}

// Result is the full outcome of one run: the final catalog in source
// order, its OK/corrected partition, the audit findings, and run stats.
type Result struct {
	Rows      []catalog.Row
	OK        []catalog.Row
	Corrected []catalog.Row
	Errors    []catalog.ValidationError
	Stats     catalog.Stats
}

// Run executes the fixed stage order: clean, filter duplicates, resolve
// codes, repair, tax, margin flag, round, partition.
func Run(records []catalog.Record, opts Options) (*Result, error) {
	if len(records) == 0 {
		return nil, catalog.ErrNoRows
	}

	res := &Result{}
	res.Stats.RowsBefore = len(records)

	rows := buildRows(records, opts.Exempt)

	if opts.Selected != nil {
		rows = dedupe.Filter(rows, opts.Selected)
	}

	primary := codes.NewRegistry()
	barcodes := codes.NewRegistry()
	parents := codes.NewRegistry()

	taxOpts := tax.Options{
		ApplyCost: opts.ApplyTaxCost,
		ApplySale: opts.ApplyTaxSale,
		Exempt:    opts.Exempt,
	}

	for i := range rows {
		row := &rows[i]

		out := codes.Resolve(row.Code, primary)
		row.Code = out.Final
		if out.Generated {
			res.Stats.CodesFixed++
		}
		row.Barcode = codes.ResolveBlank(row.Barcode, barcodes)
		row.ParentCode = codes.ResolveBlank(row.ParentCode, parents)

		repair := audit.Repair(row)
		tax.Apply(row, taxOpts)
		margin := audit.FlagMargin(row)

		if opts.Round >= 0 {
			roundRow(row, opts.Round)
		}

		res.Errors = append(res.Errors, repair.Findings...)
		res.Errors = append(res.Errors, margin.Findings...)

		if repair.Corrected || margin.Corrected {
			res.Corrected = append(res.Corrected, *row)
		} else {
			res.OK = append(res.OK, *row)
		}
		res.Rows = append(res.Rows, *row)
	}

	res.Stats.RowsOK = len(res.OK)
	res.Stats.RowsCorrected = len(res.Corrected)
	res.Stats.ErrorsCount = len(res.Errors)
	return res, nil
}

// buildRows turns raw records into cleaned, coerced rows. Text cleaning
// and numeric defaults happen here so duplicate grouping and the audit
// both see canonical values.
func buildRows(records []catalog.Record, exempt bool) []catalog.Row {
	rows := make([]catalog.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, buildRow(rec, exempt))
	}
	return rows
}

func buildRow(rec catalog.Record, exempt bool) catalog.Row {
	row := catalog.Row{
		ID:          rec.ID,
		Name:        normalize.CleanAlnumSpaces(rec.Value(catalog.FieldName)),
		Description: normalize.CleanAlnumSpaces(rec.Value(catalog.FieldDescription)),
		Unit:        normalize.CleanUnit(rec.Value(catalog.FieldUnit)),
		Code:        rec.Value(catalog.FieldCode),
		Barcode:     rec.Value(catalog.FieldBarcode),
		ParentCode:  rec.Value(catalog.FieldParentCode),
		Brand:       orSentinel(rec.Value(catalog.FieldBrand)),
		Model:       orSentinel(rec.Value(catalog.FieldModel)),
		Storable:    normalizeStorable(rec.Value(catalog.FieldStorable)),
		Conversion:  rec.Conversion,
	}

	row.Category = normalize.CleanCategory(rec.Value(catalog.FieldCategory))
	if row.Category == "" {
		row.Category = catalog.DefaultCategory
	}

	cost := coerce.Parse(rec.Value(catalog.FieldCost))
	row.Cost = cost.Num
	row.CostWasBlank = cost.WasBlank
	if !cost.Valid {
		row.Cost = 0
	}

	sale := coerce.Parse(rec.Value(catalog.FieldSalePrice))
	row.SalePrice = sale.Num
	row.SaleWasBlank = sale.WasBlank
	if !sale.Valid {
		row.SalePrice = 1
	}

	row.Stock = coerce.OrDefault(rec.Value(catalog.FieldStock), 0)

	if raw := rec.Value(catalog.FieldStockMin); strings.TrimSpace(raw) != "" {
		if n, ok := coerce.Number(raw); ok {
			row.StockMin = &n
		}
	}

	percentDefault := catalog.DefaultCostPercent
	if exempt {
		percentDefault = catalog.ExemptDefaultCostPercent
	}
	if n, ok := coerce.Number(rec.Value(catalog.FieldCostPercent)); ok && n > 0 {
		row.CostPercent = n
	} else {
		row.CostPercent = percentDefault
	}

	row.PriceList2 = coerce.OrDefault(rec.PriceList2, 1)
	row.PriceList3 = coerce.OrDefault(rec.PriceList3, 1)

	return row
}

func orSentinel(v string) string {
	s := strings.TrimSpace(normalize.Normalize(v))
	if s == "" || s == "NAN" || s == "NULL" {
		return catalog.DefaultBrandModel
	}
	return s
}

// normalizeStorable collapses yes-ish cell values to "YES", anything else
// to "NO". A missing column defaults to storable.
func normalizeStorable(v string) string {
	s := strings.TrimSpace(strings.ToUpper(v))
	if s == "" {
		return "YES"
	}
	switch s {
	case "YES", "Y", "SI", "S", "1", "TRUE":
		return "YES"
	}
	return "NO"
}

func roundRow(row *catalog.Row, places int) {
	row.Cost = coerce.Round(row.Cost, places)
	row.SalePrice = coerce.Round(row.SalePrice, places)
	row.Stock = coerce.Round(row.Stock, places)
	row.CostPercent = coerce.Round(row.CostPercent, places)
	row.PriceList2 = coerce.Round(row.PriceList2, places)
	row.PriceList3 = coerce.Round(row.PriceList3, places)
	if row.StockMin != nil {
		n := coerce.Round(*row.StockMin, places)
		row.StockMin = &n
	}
}
