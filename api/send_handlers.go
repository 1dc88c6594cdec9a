package api

import (
	"bytes"
	"io"
	"log"
	"net/http"

	"github.com/xuri/excelize/v2"

	"catalogqa/domain/catalog"
	"catalogqa/internal/errors"
	"catalogqa/internal/forward"
)

// passthroughFields are forwarded to the downstream importer exactly as
// the frontend sent them.
var passthroughFields = []string{"idCountry", "taxCodeCountry", "flagUseSimpleBrand", "idWarehouse"}

// handleSendBatch splits a finished catalog workbook into batches and
// posts them to the importer URL supplied in the X-Original-Url header,
// authenticated with the X-Token bearer token.
func (a *App) handleSendBatch(w http.ResponseWriter, r *http.Request) {
	targetURL := r.Header.Get("X-Original-Url")
	token := r.Header.Get("X-Token")
	if targetURL == "" || token == "" {
		a.writeError(w, http.StatusBadRequest, errors.InvalidInput("X-Original-Url and X-Token headers are required"))
		return
	}

	limit := a.cfg.Upload.MaxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	file, header, err := r.FormFile("file_excel")
	if err != nil {
		a.writeError(w, http.StatusBadRequest, errors.InvalidInput("missing file_excel upload"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		a.writeError(w, http.StatusRequestEntityTooLarge,
			errors.Wrapf(err, "upload exceeds %d MB limit", a.cfg.Upload.MaxUploadMB))
		return
	}

	headers, rows, err := readSheet(data)
	if err != nil {
		a.writeError(w, http.StatusBadRequest, errors.ParseFailure("file_excel is not a usable workbook", err))
		return
	}

	fields := make(map[string]string)
	for _, name := range passthroughFields {
		if v := r.FormValue(name); v != "" {
			fields[name] = v
		}
	}

	log.Printf("[API] send batch %q: %d rows to %s", header.Filename, len(rows), targetURL)

	summary, err := a.sender.Send(r.Context(), forward.Request{
		TargetURL: targetURL,
		Token:     token,
		Fields:    fields,
		Headers:   headers,
		Rows:      rows,
	})
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, errors.Wrap(err, "batch forwarding aborted"))
		return
	}

	status := http.StatusOK
	if !summary.Success {
		status = http.StatusMultiStatus
	}
	a.writeJSON(w, status, summary)
}

// readSheet extracts the header row and data rows of the first sheet.
func readSheet(data []byte) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 2 {
		return nil, nil, catalog.ErrNoRows
	}
	return rows[0], rows[1:], nil
}
