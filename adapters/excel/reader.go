package excel

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"catalogqa/domain/catalog"
	"catalogqa/internal/normalize"
)

// Layout describes where a spreadsheet's header row sits and which stable
// row id the first data row gets. Row ids count every source row, blank
// ones included, so they match the row numbers a user sees in their
// spreadsheet program and duplicate selections survive filtering.
type Layout struct {
	Name        string
	HeaderIndex int
	FirstRowID  catalog.RowID
	// Conversion layouts carry extra attribute columns after this marker
	// header. Empty for plain layouts.
	ConversionMarker string
}

var (
	// PlainLayout is the ordinary catalog template: headers in the first
	// row, data from the second.
	PlainLayout = Layout{Name: "plain", HeaderIndex: 0, FirstRowID: 2}

	// ConversionLayout is the export template with three banner rows above
	// the headers and trailing unit-conversion columns.
	ConversionLayout = Layout{
		Name:             "conversion",
		HeaderIndex:      3,
		FirstRowID:       5,
		ConversionMarker: "PRICE LIST 3",
	}
)

// extraPriceFields maps the conversion layout's secondary price-list
// headers, which sit outside the canonical column contract.
var extraPriceFields = map[string]string{
	"PRICE LIST 2": "price_list_2",
	"PRICE LIST 3": "price_list_3",
}

// Workbook is the parsed input: resolved columns plus one Record per
// non-empty data row.
type Workbook struct {
	Columns Columns
	Headers []string
	Records []catalog.Record
}

// CatalogReader parses uploaded workbooks into records.
type CatalogReader struct {
	layout Layout
}

// NewCatalogReader creates a reader for the given sheet layout.
func NewCatalogReader(layout Layout) *CatalogReader {
	return &CatalogReader{layout: layout}
}

// Read parses the workbook bytes. The first sheet is used; rows whose
// cells are all blank produce no record but still advance the row id.
func (r *CatalogReader) Read(data []byte) (*Workbook, error) {
	start := time.Now()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrUnreadable, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%w: workbook has no sheets", catalog.ErrUnreadable)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrUnreadable, err)
	}
	log.Printf("[CatalogReader] sheet %q read in %.2fms (%d rows, %s layout)",
		sheet, float64(time.Since(start).Nanoseconds())/1e6, len(rows), r.layout.Name)

	if len(rows) <= r.layout.HeaderIndex+1 {
		return nil, catalog.ErrNoRows
	}

	headers := rows[r.layout.HeaderIndex]
	cols := ResolveColumns(headers)
	if !cols.Has(catalog.FieldName) {
		return nil, catalog.NewColumnMissingError(catalog.FieldName)
	}

	conversionCols := r.conversionColumns(headers)
	pl2, pl3 := r.priceListColumns(headers)

	wb := &Workbook{Columns: cols, Headers: headers}

	for i, raw := range rows[r.layout.HeaderIndex+1:] {
		id := r.layout.FirstRowID + catalog.RowID(i)
		if allBlank(raw) {
			continue
		}
		rec := catalog.Record{ID: id, Values: make(map[catalog.Field]string)}
		for field, idx := range cols {
			rec.Values[field] = cell(raw, idx)
		}
		rec.Conversion = buildConversion(raw, conversionCols)
		if pl2 >= 0 {
			rec.PriceList2 = cell(raw, pl2)
		}
		if pl3 >= 0 {
			rec.PriceList3 = cell(raw, pl3)
		}
		wb.Records = append(wb.Records, rec)
	}

	if len(wb.Records) == 0 {
		return nil, catalog.ErrNoRows
	}
	return wb, nil
}

type conversionColumn struct {
	index int
	name  string
}

// conversionColumns finds the trailing attribute columns after the marker
// header. Column names are normalized with spaces and hyphens removed, so
// "Caja x 12" becomes "CAJAX12".
func (r *CatalogReader) conversionColumns(headers []string) []conversionColumn {
	if r.layout.ConversionMarker == "" {
		return nil
	}
	marker := -1
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), r.layout.ConversionMarker) {
			marker = i
			break
		}
	}
	if marker < 0 {
		return nil
	}

	var cols []conversionColumn
	for i := marker + 1; i < len(headers); i++ {
		name := strings.TrimSpace(headers[i])
		if name == "" {
			continue
		}
		cleaned := strings.NewReplacer(" ", "", "-", "").Replace(normalize.Normalize(name))
		cols = append(cols, conversionColumn{index: i, name: cleaned})
	}
	return cols
}

func (r *CatalogReader) priceListColumns(headers []string) (pl2, pl3 int) {
	pl2, pl3 = -1, -1
	if r.layout.ConversionMarker == "" {
		return
	}
	for i, h := range headers {
		switch extraPriceFields[strings.ToUpper(strings.TrimSpace(h))] {
		case "price_list_2":
			pl2 = i
		case "price_list_3":
			pl3 = i
		}
	}
	return
}

// buildConversion joins "name-name-value" fragments for every populated
// attribute cell with "#".
func buildConversion(raw []string, cols []conversionColumn) string {
	var parts []string
	for _, c := range cols {
		v := strings.TrimSpace(cell(raw, c.index))
		if v == "" || strings.EqualFold(v, "NAN") {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s-%s-%s", c.name, c.name, v))
	}
	return strings.Join(parts, "#")
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func allBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
