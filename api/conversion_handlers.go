package api

import (
	"log"
	"net/http"

	"catalogqa/adapters/excel"
	"catalogqa/domain/catalog"
	"catalogqa/internal/errors"
	"catalogqa/internal/pipeline"
)

// conversionAnalyzeResponse mirrors analyzeResponse without an upload id:
// the conversion flow re-uploads the file on the excel call instead of
// using the cache.
type conversionAnalyzeResponse struct {
	HasDuplicates bool                     `json:"has_duplicates"`
	Groups        []catalog.DuplicateGroup `json:"groups"`
	ColumnsHint   []string                 `json:"columns_hint"`
	PriceProfile  *pipeline.PriceProfile   `json:"price_profile,omitempty"`
}

// handleConversionAnalyze previews a conversion-layout workbook.
func (a *App) handleConversionAnalyze(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := a.readUpload(w, r)
	if !ok {
		return
	}

	wb, err := excel.NewCatalogReader(excel.ConversionLayout).Read(data)
	if err != nil {
		a.writePipelineError(w, err)
		return
	}

	analysis, err := pipeline.Analyze(wb.Records, false)
	if err != nil {
		a.writePipelineError(w, err)
		return
	}

	log.Printf("[API] conversion analyze %q: %d rows, %d duplicate groups",
		filename, len(wb.Records), len(analysis.Groups))

	a.writeJSON(w, http.StatusOK, conversionAnalyzeResponse{
		HasDuplicates: analysis.HasDuplicates,
		Groups:        analysis.Groups,
		ColumnsHint:   wb.Headers,
		PriceProfile:  analysis.PriceProfile,
	})
}

// handleConversionExcel runs the pipeline over a conversion-layout upload
// and streams back the QA workbook with the conversion products template.
func (a *App) handleConversionExcel(w http.ResponseWriter, r *http.Request) {
	data, _, ok := a.readUpload(w, r)
	if !ok {
		return
	}

	opts := pipelineOptions(r)

	wb, err := excel.NewCatalogReader(excel.ConversionLayout).Read(data)
	if err != nil {
		a.writePipelineError(w, err)
		return
	}

	result, err := pipeline.Run(wb.Records, opts)
	if err != nil {
		a.writePipelineError(w, err)
		return
	}

	out, err := excel.NewQAWriter(a.cfg.ACL.StoreName, true).Write(result)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, errors.Wrap(err, "failed to build QA workbook"))
		return
	}

	a.streamWorkbook(w, "conversion_QA.xlsx", out, result.Stats)
}
