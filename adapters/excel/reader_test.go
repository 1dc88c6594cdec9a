package excel

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/xuri/excelize/v2"

	"catalogqa/domain/catalog"
	"catalogqa/internal/pipeline"
)

// buildWorkbook writes rows (including any header rows) to an in-memory
// single-sheet workbook.
func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		if err := f.SetSheetRow("Sheet1", fmt.Sprintf("A%d", i+1), &row); err != nil {
			t.Fatalf("Failed to write row %d: %v", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("Failed to serialize workbook: %v", err)
	}
	return buf.Bytes()
}

// TestReadPlainLayout tests header resolution and sequential row ids
// starting at 2.
func TestReadPlainLayout(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"CODE OF PRODUCT", "NAME OF PRODUCT", "COST PRICE", "MAIN SALE PRICE"},
		{"AB1234", "ARROZ", "10", "15"},
		{"CD5678", "AZUCAR", "20", "25"},
	})

	wb, err := NewCatalogReader(PlainLayout).Read(data)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if len(wb.Records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(wb.Records))
	}
	if wb.Records[0].ID != 2 || wb.Records[1].ID != 3 {
		t.Errorf("Expected row ids [2 3], got [%d %d]", wb.Records[0].ID, wb.Records[1].ID)
	}
	if got := wb.Records[0].Value(catalog.FieldName); got != "ARROZ" {
		t.Errorf("Expected name ARROZ, got %q", got)
	}
	if got := wb.Records[1].Value(catalog.FieldCost); got != "20" {
		t.Errorf("Expected cost 20, got %q", got)
	}
}

// TestReadSkipsBlankRows tests that fully blank rows produce no record
// but still count toward row ids, so ids keep matching the spreadsheet
// positions an operator sees.
func TestReadSkipsBlankRows(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"NAME OF PRODUCT"},
		{"ARROZ"},
		{""},
		{"AZUCAR"},
	})

	wb, err := NewCatalogReader(PlainLayout).Read(data)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(wb.Records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(wb.Records))
	}
	if wb.Records[0].ID != 2 {
		t.Errorf("Expected first record id 2, got %d", wb.Records[0].ID)
	}
	if wb.Records[1].ID != 4 {
		t.Errorf("AZUCAR sits at spreadsheet row 4, got row id %d", wb.Records[1].ID)
	}
}

// TestReadConversionLayout tests the banner-row offset, first row id 5,
// the secondary price lists and the conversion attribute.
func TestReadConversionLayout(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"EXPORT"},
		{""},
		{""},
		{"CODE OF PRODUCT", "NAME OF PRODUCT", "MAIN SALE PRICE", "PRICE LIST 2", "PRICE LIST 3", "Caja x 12", "Paquete-6"},
		{"AB1234", "ARROZ", "10", "12", "14", "30", ""},
		{"CD5678", "AZUCAR", "20", "", "", "", "5"},
	})

	wb, err := NewCatalogReader(ConversionLayout).Read(data)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if len(wb.Records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(wb.Records))
	}
	first := wb.Records[0]
	if first.ID != 5 {
		t.Errorf("Expected first row id 5, got %d", first.ID)
	}
	if first.PriceList2 != "12" || first.PriceList3 != "14" {
		t.Errorf("Expected price lists 12/14, got %q/%q", first.PriceList2, first.PriceList3)
	}
	if first.Conversion != "CAJAX12-CAJAX12-30" {
		t.Errorf("Expected conversion CAJAX12-CAJAX12-30, got %q", first.Conversion)
	}

	second := wb.Records[1]
	if second.Conversion != "PAQUETE6-PAQUETE6-5" {
		t.Errorf("Expected conversion PAQUETE6-PAQUETE6-5, got %q", second.Conversion)
	}
}

// TestReadStructuralErrors tests the structural failure modes.
func TestReadStructuralErrors(t *testing.T) {
	if _, err := NewCatalogReader(PlainLayout).Read([]byte("not an xlsx")); !errors.Is(err, catalog.ErrUnreadable) {
		t.Errorf("Expected ErrUnreadable for garbage bytes, got %v", err)
	}

	headerOnly := buildWorkbook(t, [][]interface{}{{"NAME OF PRODUCT"}})
	if _, err := NewCatalogReader(PlainLayout).Read(headerOnly); !errors.Is(err, catalog.ErrNoRows) {
		t.Errorf("Expected ErrNoRows for header-only sheet, got %v", err)
	}

	noName := buildWorkbook(t, [][]interface{}{
		{"CODE OF PRODUCT"},
		{"AB1234"},
	})
	if _, err := NewCatalogReader(PlainLayout).Read(noName); !errors.Is(err, catalog.ErrColumnMissing) {
		t.Errorf("Expected ErrColumnMissing without a name column, got %v", err)
	}
}

// TestWriteRoundtrip tests that the QA writer emits the four sheets with
// the downstream products template, readable back by excelize.
func TestWriteRoundtrip(t *testing.T) {
	result := sampleResult()

	out, err := NewQAWriter("Tienda1", false).Write(result)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("Failed to reopen workbook: %v", err)
	}
	defer f.Close()

	expected := []string{SheetErrors, SheetOK, SheetCorrected, SheetProducts}
	got := f.GetSheetList()
	if len(got) != len(expected) {
		t.Fatalf("Expected sheets %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("Expected sheets %v, got %v", expected, got)
		}
	}

	products, err := f.GetRows(SheetProducts)
	if err != nil {
		t.Fatalf("Failed to read products sheet: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("Expected header + 2 product rows, got %d", len(products))
	}
	header := products[0]
	if header[len(header)-1] != "W-Tienda1" {
		t.Errorf("Expected store column W-Tienda1, got %q", header[len(header)-1])
	}

	errRows, err := f.GetRows(SheetErrors)
	if err != nil {
		t.Fatalf("Failed to read errors sheet: %v", err)
	}
	if len(errRows) != 2 {
		t.Fatalf("Expected header + 1 error row, got %d", len(errRows))
	}
	if errRows[1][1] != "3 / stock" {
		t.Errorf("Expected error location %q, got %q", "3 / stock", errRows[1][1])
	}
}

// TestWriteConversionTemplate tests the conversion products sheet headers.
func TestWriteConversionTemplate(t *testing.T) {
	out, err := NewQAWriter("Tienda1", true).Write(sampleResult())
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("Failed to reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetProducts)
	if err != nil {
		t.Fatalf("Failed to read products sheet: %v", err)
	}
	header := rows[0]

	wantSome := []string{"conversion", "RA sale price", "RA2 sale price", "R-List1"}
	for _, want := range wantSome {
		found := false
		for _, h := range header {
			if h == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected conversion header %q, got %v", want, header)
		}
	}
}

func sampleResult() *pipeline.Result {
	ok := catalog.Row{
		ID: 2, Code: "AB1234", Name: "ARROZ", Category: "ABARROTES",
		Unit: "UNIDAD", Brand: "S/M", Model: "S/M", Storable: "YES",
		Cost: 10, SalePrice: 15, Stock: 5, CostPercent: 18,
	}
	bad := catalog.Row{
		ID: 3, Code: "CD5678", Name: "AZUCAR", Category: "ABARROTES",
		Unit: "UNIDAD", Brand: "S/M", Model: "S/M", Storable: "YES",
		Cost: 2, SalePrice: 3, Stock: 0, CostPercent: 18,
	}
	return &pipeline.Result{
		Rows:      []catalog.Row{ok, bad},
		OK:        []catalog.Row{ok},
		Corrected: []catalog.Row{bad},
		Errors: []catalog.ValidationError{
			{Code: "CD5678", Location: "3 / stock", Value: -1.0, Kind: catalog.KindStockNegative, Fix: 0.0, Comment: "Adjusted to 0."},
		},
		Stats: catalog.Stats{RowsBefore: 2, RowsOK: 1, RowsCorrected: 1, ErrorsCount: 1},
	}
}
