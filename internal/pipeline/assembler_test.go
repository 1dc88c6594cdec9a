package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogqa/domain/catalog"
)

func record(id catalog.RowID, values map[catalog.Field]string) catalog.Record {
	return catalog.Record{ID: id, Values: values}
}

// TestRunDefaultsAndPartition tests sentinel substitution, numeric
// defaults and the OK/corrected partition over a small catalog.
func TestRunDefaultsAndPartition(t *testing.T) {
	records := []catalog.Record{
		record(2, map[catalog.Field]string{
			catalog.FieldCode:      "AB1234",
			catalog.FieldName:      "arroz extra",
			catalog.FieldUnit:      "und",
			catalog.FieldCategory:  "abarrotes",
			catalog.FieldCost:      "10",
			catalog.FieldSalePrice: "15",
			catalog.FieldStock:     "5",
		}),
		record(3, map[catalog.Field]string{
			catalog.FieldCode:      "", // generated
			catalog.FieldName:      "azucar",
			catalog.FieldCost:      "",
			catalog.FieldSalePrice: "",
			catalog.FieldStock:     "-2", // clamped
		}),
	}

	result, err := Run(records, Options{Round: -1})
	require.NoError(t, err)

	require.Len(t, result.Rows, 2)
	assert.Equal(t, 2, result.Stats.RowsBefore)
	assert.Equal(t, 1, result.Stats.RowsOK)
	assert.Equal(t, 1, result.Stats.RowsCorrected)
	assert.Equal(t, 1, result.Stats.CodesFixed)
	assert.Equal(t, len(result.Errors), result.Stats.ErrorsCount)

	ok := result.OK[0]
	assert.Equal(t, "AB1234", ok.Code)
	assert.Equal(t, "ARROZ EXTRA", ok.Name)
	assert.Equal(t, "UNIDAD", ok.Unit)
	assert.Equal(t, "ABARROTES", ok.Category)
	assert.Equal(t, catalog.DefaultBrandModel, ok.Brand)
	assert.Equal(t, catalog.DefaultBrandModel, ok.Model)
	assert.Equal(t, "YES", ok.Storable)
	assert.Equal(t, catalog.DefaultCostPercent, ok.CostPercent)

	bad := result.Corrected[0]
	assert.True(t, strings.HasPrefix(bad.Code, "CM"), "expected generated code, got %s", bad.Code)
	assert.Equal(t, catalog.DefaultCategory, bad.Category)
	assert.Equal(t, 0.0, bad.Cost)
	assert.Equal(t, 1.0, bad.SalePrice)
	assert.Equal(t, 0.0, bad.Stock)
}

// TestRunTaxAfterClampsBeforeMargin tests the fixed stage order: a blank
// sale defaults to 1, is taxed, and the margin flag then compares the
// taxed values without adjusting them.
func TestRunTaxAfterClampsBeforeMargin(t *testing.T) {
	records := []catalog.Record{
		record(2, map[catalog.Field]string{
			catalog.FieldCode:      "AB1234",
			catalog.FieldName:      "cafe",
			catalog.FieldCost:      "2",
			catalog.FieldSalePrice: "",
			catalog.FieldStock:     "1",
		}),
	}

	result, err := Run(records, Options{ApplyTaxSale: true, Round: -1})
	require.NoError(t, err)

	row := result.Rows[0]
	assert.InDelta(t, 1.18, row.SalePrice, 1e-9)
	assert.Equal(t, 2.0, row.Cost)

	var margin *catalog.ValidationError
	for i := range result.Errors {
		if result.Errors[i].Kind == catalog.KindSaleNotAboveCost {
			margin = &result.Errors[i]
		}
	}
	require.NotNil(t, margin, "expected margin finding")
	assert.Contains(t, margin.Comment, "blank")
	assert.Equal(t, 1, result.Stats.RowsCorrected)
}

// TestRunDuplicateFilter tests that a provided selection keeps only the
// chosen duplicates while nil leaves everything in place.
func TestRunDuplicateFilter(t *testing.T) {
	records := []catalog.Record{
		record(2, map[catalog.Field]string{catalog.FieldCode: "AAAA11", catalog.FieldName: "arroz", catalog.FieldSalePrice: "5"}),
		record(3, map[catalog.Field]string{catalog.FieldCode: "BBBB22", catalog.FieldName: "arroz", catalog.FieldSalePrice: "5"}),
		record(4, map[catalog.Field]string{catalog.FieldCode: "CCCC33", catalog.FieldName: "leche", catalog.FieldSalePrice: "5"}),
	}

	unfiltered, err := Run(records, Options{Round: -1})
	require.NoError(t, err)
	assert.Len(t, unfiltered.Rows, 3)

	filtered, err := Run(records, Options{Round: -1, Selected: map[catalog.RowID]bool{3: true}})
	require.NoError(t, err)
	require.Len(t, filtered.Rows, 2)
	assert.Equal(t, catalog.RowID(3), filtered.Rows[0].ID)
	assert.Equal(t, catalog.RowID(4), filtered.Rows[1].ID)
	assert.Equal(t, 3, filtered.Stats.RowsBefore, "rows_before counts the pre-filter catalog")
}

// TestRunExempt tests that exemption zeroes the default cost percent and
// suppresses the tax switches.
func TestRunExempt(t *testing.T) {
	records := []catalog.Record{
		record(2, map[catalog.Field]string{
			catalog.FieldCode:      "AB1234",
			catalog.FieldName:      "arroz",
			catalog.FieldCost:      "10",
			catalog.FieldSalePrice: "20",
		}),
	}

	result, err := Run(records, Options{ApplyTaxCost: true, ApplyTaxSale: true, Exempt: true, Round: -1})
	require.NoError(t, err)

	row := result.Rows[0]
	assert.Equal(t, 10.0, row.Cost)
	assert.Equal(t, 20.0, row.SalePrice)
	assert.Equal(t, catalog.ExemptDefaultCostPercent, row.CostPercent)
}

// TestRunRounding tests the final rounding pass.
func TestRunRounding(t *testing.T) {
	records := []catalog.Record{
		record(2, map[catalog.Field]string{
			catalog.FieldCode:      "AB1234",
			catalog.FieldName:      "arroz",
			catalog.FieldCost:      "1.005",
			catalog.FieldSalePrice: "3.14159",
		}),
	}

	result, err := Run(records, Options{Round: 2})
	require.NoError(t, err)
	assert.Equal(t, 3.14, result.Rows[0].SalePrice)
}

// TestRunKeepsSheetPercent tests that a positive sheet percent survives
// while zero or negative falls back to the default.
func TestRunKeepsSheetPercent(t *testing.T) {
	records := []catalog.Record{
		record(2, map[catalog.Field]string{
			catalog.FieldCode: "AB1234", catalog.FieldName: "a", catalog.FieldSalePrice: "5",
			catalog.FieldCostPercent: "10",
		}),
		record(3, map[catalog.Field]string{
			catalog.FieldCode: "CD5678", catalog.FieldName: "b", catalog.FieldSalePrice: "5",
			catalog.FieldCostPercent: "0",
		}),
	}

	result, err := Run(records, Options{Round: -1})
	require.NoError(t, err)
	assert.Equal(t, 10.0, result.Rows[0].CostPercent)
	assert.Equal(t, catalog.DefaultCostPercent, result.Rows[1].CostPercent)
}

// TestRunNoRows tests the structural failure for an empty catalog.
func TestRunNoRows(t *testing.T) {
	_, err := Run(nil, Options{Round: -1})
	require.ErrorIs(t, err, catalog.ErrNoRows)
}

// TestAnalyze tests the read-only preview: duplicate groups, duplicate
// codes kept under their original value, and the price profile.
func TestAnalyze(t *testing.T) {
	records := []catalog.Record{
		record(2, map[catalog.Field]string{catalog.FieldCode: "AB1234", catalog.FieldName: "arroz", catalog.FieldCost: "10", catalog.FieldSalePrice: "20"}),
		record(3, map[catalog.Field]string{catalog.FieldCode: "AB1234", catalog.FieldName: "arroz", catalog.FieldCost: "30", catalog.FieldSalePrice: "40"}),
	}

	analysis, err := Analyze(records, false)
	require.NoError(t, err)

	assert.True(t, analysis.HasDuplicates)
	require.Len(t, analysis.Groups, 1)
	assert.Equal(t, "ARROZ", analysis.Groups[0].Key)
	assert.Equal(t, 2, analysis.Groups[0].Count)

	// The duplicate code stays visible instead of being regenerated.
	assert.Equal(t, "AB1234", analysis.Rows[1].Code)

	require.NotNil(t, analysis.PriceProfile)
	assert.Equal(t, 10.0, analysis.PriceProfile.Cost.Min)
	assert.Equal(t, 30.0, analysis.PriceProfile.Cost.Max)
	assert.Equal(t, 20.0, analysis.PriceProfile.Cost.Mean)
	assert.Equal(t, 30.0, analysis.PriceProfile.Sale.Median)
}

// TestProfilePricesEmpty tests the nil return for an empty catalog.
func TestProfilePricesEmpty(t *testing.T) {
	assert.Nil(t, ProfilePrices(nil))
}
