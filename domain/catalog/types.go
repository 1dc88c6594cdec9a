package catalog

// RowID is a row's original 1-based position in the source spreadsheet.
// It is assigned once at ingestion and never recomputed, so callers can
// select rows (duplicate resolution) without depending on post-filter
// slice indices.
type RowID int

// Field names the canonical columns of a catalog row.
type Field string

const (
	FieldCode        Field = "code"
	FieldBarcode     Field = "barcode"
	FieldParentCode  Field = "parent_code"
	FieldName        Field = "name"
	FieldDescription Field = "description"
	FieldCategory    Field = "category"
	FieldCost        Field = "cost"
	FieldSalePrice   Field = "sale_price"
	FieldUnit        Field = "unit"
	FieldStock       Field = "stock"
	FieldStockMin    Field = "stock_min"
	FieldBrand       Field = "brand"
	FieldModel       Field = "model"
	FieldStorable    Field = "storable"
	FieldCostPercent Field = "cost_percent"
)

// Sentinel defaults substituted for empty or invalid fields. Substitution
// is always recorded in the error list.
const (
	DefaultCategory   = "UNCATEGORIZED"
	DefaultUnit       = "UNIDAD"
	DefaultBrandModel = "S/M"
)

// Default cost percentages; the exemption region uses zero.
const (
	DefaultCostPercent       = 18.0
	ExemptDefaultCostPercent = 0.0
)

// Record is one raw spreadsheet row before any cleaning: cell text keyed
// by canonical field, plus the pre-built conversion attribute for the
// conversion layout.
type Record struct {
	ID         RowID
	Values     map[Field]string
	Conversion string

	// Raw secondary price-list cells (conversion layout only).
	PriceList2 string
	PriceList3 string
}

// Value returns the raw cell text for a field, or "" when the column was
// absent from the source sheet.
func (r Record) Value(f Field) string {
	return r.Values[f]
}

// Row is one catalog line as it moves through the pipeline. Numeric fields
// hold their coerced values; the WasBlank flags record whether the raw
// price cell was empty (as opposed to present but unparseable).
type Row struct {
	ID          RowID    `json:"row_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Code        string   `json:"code"`
	Barcode     string   `json:"barcode,omitempty"`
	ParentCode  string   `json:"parent_code,omitempty"`
	Unit        string   `json:"unit"`
	Brand       string   `json:"brand"`
	Model       string   `json:"model"`
	Storable    string   `json:"storable"`
	Cost        float64  `json:"cost"`
	SalePrice   float64  `json:"sale_price"`
	Stock       float64  `json:"stock"`
	StockMin    *float64 `json:"stock_min,omitempty"`
	CostPercent float64  `json:"cost_percent"`

	CostWasBlank bool `json:"-"`
	SaleWasBlank bool `json:"-"`

	// Conversion-layout extras.
	Conversion string  `json:"conversion,omitempty"`
	PriceList2 float64 `json:"price_list_2,omitempty"`
	PriceList3 float64 `json:"price_list_3,omitempty"`
}

// Classification is a row's terminal audit state. Rows are never rejected;
// a finding moves the row to Corrected, nothing more.
type Classification int

const (
	ClassOK Classification = iota
	ClassCorrected
)

func (c Classification) String() string {
	if c == ClassCorrected {
		return "CORRECTED"
	}
	return "OK"
}

// ErrorKind classifies a per-row audit finding.
type ErrorKind string

const (
	KindCodeEmpty         ErrorKind = "CODE_EMPTY"
	KindNameEmpty         ErrorKind = "NAME_EMPTY"
	KindUnitEmpty         ErrorKind = "UNIT_EMPTY"
	KindCategoryDefaulted ErrorKind = "CATEGORY_DEFAULTED"
	KindStockNegative     ErrorKind = "STOCK_NEGATIVE"
	KindCostNegative      ErrorKind = "COST_NEGATIVE"
	KindSaleBelowMinimum  ErrorKind = "SALE_BELOW_MINIMUM"
	KindSaleNotAboveCost  ErrorKind = "SALE_NOT_ABOVE_COST"
)

// ValidationError is one immutable audit finding. Location is rendered as
// "row / column" using the stable row id.
type ValidationError struct {
	Code     string      `json:"code"`
	Location string      `json:"location"`
	Value    interface{} `json:"value"`
	Kind     ErrorKind   `json:"kind"`
	Fix      interface{} `json:"fix"`
	Comment  string      `json:"comment"`
}

// Stats summarizes one pipeline run.
type Stats struct {
	RowsBefore    int `json:"rows_before"`
	RowsOK        int `json:"rows_ok"`
	RowsCorrected int `json:"rows_corrected"`
	ErrorsCount   int `json:"errors_count"`
	CodesFixed    int `json:"codes_fixed"`
}

// DuplicateGroup collects the rows sharing one normalized name. Computed
// on demand for the analysis view, never persisted.
type DuplicateGroup struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
	Rows  []Row  `json:"rows"`
}

// TaxFactor is the fixed multiplier applied to prices unless the run is
// exempt.
const TaxFactor = 1.18
