package excel

import (
	"fmt"
	"log"

	"github.com/xuri/excelize/v2"

	"catalogqa/domain/catalog"
	"catalogqa/internal/pipeline"
)

// Sheet names of the QA workbook, in write order.
const (
	SheetErrors    = "Errors_Detected"
	SheetOK        = "Products_OK"
	SheetCorrected = "Products_Corrected"
	SheetProducts  = "products"
)

// PriceListRange is the fixed range value for price-list columns on the
// downstream template.
const PriceListRange = "0-0-0"

var errorHeaders = []interface{}{
	"Code",
	"Location (Row / Column)",
	"Detected Value",
	"Error Detected",
	"Suggested Fix",
	"Comments",
}

var rowHeaders = []interface{}{
	"CODE OF PRODUCT",
	"BARCODE",
	"PARENT CODE",
	"NAME OF PRODUCT",
	"DESCRIPTION",
	"CATEGORY",
	"COST PRICE",
	"MAIN SALE PRICE",
	"UNIT",
	"STOCK",
	"MINIMUM STOCK",
	"BRAND",
	"MODEL",
	"STORABLE",
	"COST PERCENT",
}

// QAWriter renders pipeline results as the four-sheet QA workbook. The
// "products" sheet follows the downstream platform's column order; the
// stock column is duplicated under the store-specific "W-" header.
type QAWriter struct {
	storeName  string
	conversion bool
}

// NewQAWriter creates a writer. conversion switches the products sheet to
// the conversion template (extra conversion and secondary price-list
// columns).
func NewQAWriter(storeName string, conversion bool) *QAWriter {
	return &QAWriter{storeName: storeName, conversion: conversion}
}

// Write renders the workbook and returns the xlsx bytes.
func (w *QAWriter) Write(result *pipeline.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", SheetErrors)
	if err := w.writeErrors(f, result.Errors); err != nil {
		return nil, fmt.Errorf("failed to write error sheet: %w", err)
	}
	if err := w.writeRows(f, SheetOK, result.OK); err != nil {
		return nil, fmt.Errorf("failed to write OK sheet: %w", err)
	}
	if err := w.writeRows(f, SheetCorrected, result.Corrected); err != nil {
		return nil, fmt.Errorf("failed to write corrected sheet: %w", err)
	}
	if err := w.writeProducts(f, result.Rows); err != nil {
		return nil, fmt.Errorf("failed to write products sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	log.Printf("[QAWriter] workbook written (%d rows, %d errors, %d bytes)",
		len(result.Rows), len(result.Errors), buf.Len())
	return buf.Bytes(), nil
}

func (w *QAWriter) writeErrors(f *excelize.File, errs []catalog.ValidationError) error {
	if err := f.SetSheetRow(SheetErrors, "A1", &errorHeaders); err != nil {
		return err
	}
	for i, e := range errs {
		row := []interface{}{e.Code, e.Location, e.Value, string(e.Kind), e.Fix, e.Comment}
		if err := f.SetSheetRow(SheetErrors, cellRef(i+2), &row); err != nil {
			return err
		}
	}
	return nil
}

func (w *QAWriter) writeRows(f *excelize.File, sheet string, rows []catalog.Row) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &rowHeaders); err != nil {
		return err
	}
	for i, r := range rows {
		row := []interface{}{
			r.Code, r.Barcode, r.ParentCode, r.Name, r.Description, r.Category,
			r.Cost, r.SalePrice, r.Unit, r.Stock, stockMinCell(r.StockMin),
			r.Brand, r.Model, r.Storable, r.CostPercent,
		}
		if err := f.SetSheetRow(sheet, cellRef(i+2), &row); err != nil {
			return err
		}
	}
	return nil
}

func (w *QAWriter) writeProducts(f *excelize.File, rows []catalog.Row) error {
	if _, err := f.NewSheet(SheetProducts); err != nil {
		return err
	}
	headers := w.productHeaders()
	if err := f.SetSheetRow(SheetProducts, "A1", &headers); err != nil {
		return err
	}
	for i, r := range rows {
		row := w.productRow(r)
		if err := f.SetSheetRow(SheetProducts, cellRef(i+2), &row); err != nil {
			return err
		}
	}
	return nil
}

func (w *QAWriter) productHeaders() []interface{} {
	store := "W-" + w.storeName
	if w.conversion {
		return []interface{}{
			"Name", "Description", "parent code", "code", "Category",
			"stock", "minimum stock", "cost price", "sale price", "cost percent",
			"conversion", "R-List1", "RA sale price", "RA-List2",
			"RA2 sale price", "RA2-List3", "unit", "Brand", "Model",
			"Storable", store,
		}
	}
	return []interface{}{
		"Name", "Description", "parent code", "code", "barcode", "Category",
		"stock", "minimum stock", "cost price", "sale price", "cost percent",
		"R-List1", "unit", "Brand", "Model", "Storable", store,
	}
}

func (w *QAWriter) productRow(r catalog.Row) []interface{} {
	if w.conversion {
		return []interface{}{
			r.Name, r.Description, r.ParentCode, r.Code, r.Category,
			r.Stock, stockMinCell(r.StockMin), r.Cost, r.SalePrice, r.CostPercent,
			r.Conversion, PriceListRange, r.PriceList2, PriceListRange,
			r.PriceList3, PriceListRange, r.Unit, r.Brand, r.Model,
			r.Storable, r.Stock,
		}
	}
	return []interface{}{
		r.Name, r.Description, r.ParentCode, r.Code, r.Barcode, r.Category,
		r.Stock, stockMinCell(r.StockMin), r.Cost, r.SalePrice, r.CostPercent,
		PriceListRange, r.Unit, r.Brand, r.Model, r.Storable, r.Stock,
	}
}

func stockMinCell(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func cellRef(row int) string {
	return fmt.Sprintf("A%d", row)
}
