package api

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"catalogqa/adapters/excel"
	"catalogqa/domain/catalog"
	"catalogqa/internal/errors"
	"catalogqa/internal/pipeline"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// analyzeResponse is the upload preview returned to the frontend. The
// upload id lets the later normalize call reuse the cached bytes.
type analyzeResponse struct {
	UploadID      string                   `json:"upload_id"`
	HasDuplicates bool                     `json:"has_duplicates"`
	Groups        []catalog.DuplicateGroup `json:"groups"`
	ColumnsHint   []string                 `json:"columns_hint"`
	PriceProfile  *pipeline.PriceProfile   `json:"price_profile,omitempty"`
}

// handleAnalyze caches the uploaded workbook and returns the duplicate
// groups and price profile of its cleaned rows.
func (a *App) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := a.readUpload(w, r)
	if !ok {
		return
	}

	wb, err := excel.NewCatalogReader(excel.PlainLayout).Read(data)
	if err != nil {
		a.writePipelineError(w, err)
		return
	}

	analysis, err := pipeline.Analyze(wb.Records, false)
	if err != nil {
		a.writePipelineError(w, err)
		return
	}

	uploadID := a.uploads.Put(filename, data)
	log.Printf("[API] analyze %q: %d rows, %d duplicate groups (upload %s)",
		filename, len(wb.Records), len(analysis.Groups), uploadID)

	a.writeJSON(w, http.StatusOK, analyzeResponse{
		UploadID:      uploadID,
		HasDuplicates: analysis.HasDuplicates,
		Groups:        analysis.Groups,
		ColumnsHint:   wb.Headers,
		PriceProfile:  analysis.PriceProfile,
	})
}

// handleNormalize runs the full pipeline over a cached upload and streams
// back the QA workbook.
func (a *App) handleNormalize(w http.ResponseWriter, r *http.Request) {
	uploadID := r.URL.Query().Get("upload_id")
	entry, ok := a.uploads.Get(uploadID)
	if !ok {
		a.writeError(w, http.StatusNotFound, errors.NotFound("upload_id"))
		return
	}

	opts := pipelineOptions(r)

	wb, err := excel.NewCatalogReader(excel.PlainLayout).Read(entry.Data)
	if err != nil {
		a.writePipelineError(w, err)
		return
	}

	result, err := pipeline.Run(wb.Records, opts)
	if err != nil {
		a.writePipelineError(w, err)
		return
	}

	out, err := excel.NewQAWriter(a.cfg.ACL.StoreName, false).Write(result)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, errors.Wrap(err, "failed to build QA workbook"))
		return
	}

	a.streamWorkbook(w, "catalog_QA.xlsx", out, result.Stats)
}

// pipelineOptions decodes the shared query parameters of the normalize
// endpoints.
func pipelineOptions(r *http.Request) pipeline.Options {
	q := r.URL.Query()
	opts := pipeline.Options{
		ApplyTaxCost: queryBool(q.Get("apply_tax_cost")),
		ApplyTaxSale: queryBool(q.Get("apply_tax_sale")),
		Exempt:       queryBool(q.Get("exempt")),
		Round:        -1,
		Selected:     parseSelected(q),
	}
	if n, err := strconv.Atoi(q.Get("round")); err == nil && n >= 0 {
		opts.Round = n
	}
	return opts
}

// parseSelected decodes the CSV of selected row ids. An absent parameter
// means filtering was not requested; present but empty drops every
// duplicate row, so presence matters, not just the value.
func parseSelected(q url.Values) map[catalog.RowID]bool {
	if !q.Has("selected_row_ids") {
		return nil
	}
	selected := make(map[catalog.RowID]bool)
	for _, part := range strings.Split(q.Get("selected_row_ids"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.Atoi(part); err == nil {
			selected[catalog.RowID(id)] = true
		}
	}
	return selected
}

func queryBool(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// readUpload pulls the multipart "file" part, enforcing the configured
// size limit.
func (a *App) readUpload(w http.ResponseWriter, r *http.Request) (data []byte, filename string, ok bool) {
	limit := a.cfg.Upload.MaxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	file, header, err := r.FormFile("file")
	if err != nil {
		a.writeError(w, http.StatusBadRequest, errors.InvalidInput("missing file upload"))
		return nil, "", false
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		a.writeError(w, http.StatusRequestEntityTooLarge,
			errors.Wrapf(err, "upload exceeds %d MB limit", a.cfg.Upload.MaxUploadMB))
		return nil, "", false
	}
	return data, header.Filename, true
}

// streamWorkbook writes the xlsx bytes with the run stats exposed as
// response headers.
func (a *App) streamWorkbook(w http.ResponseWriter, filename string, data []byte, stats catalog.Stats) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("X-Rows-Before", strconv.Itoa(stats.RowsBefore))
	w.Header().Set("X-Rows-OK", strconv.Itoa(stats.RowsOK))
	w.Header().Set("X-Rows-Corrected", strconv.Itoa(stats.RowsCorrected))
	w.Header().Set("X-Errors-Count", strconv.Itoa(stats.ErrorsCount))
	w.Header().Set("X-Codes-Fixed", strconv.Itoa(stats.CodesFixed))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
