// Package forward posts a finished catalog to the downstream platform in
// row batches, preserving the exact sheet the platform importer expects.
package forward

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"catalogqa/internal"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// responseSnippet caps how much of an upstream body lands in the summary.
const responseSnippet = 500

// Sender splits catalogs into batches and posts them concurrently.
type Sender struct {
	client      *http.Client
	batchSize   int
	concurrency int
	logger      *internal.Logger
}

// NewSender creates a sender with the given batch size and concurrency
// limit.
func NewSender(batchSize, concurrency int) *Sender {
	return &Sender{
		client:      &http.Client{Timeout: 120 * time.Second},
		batchSize:   batchSize,
		concurrency: concurrency,
		logger:      internal.DefaultLogger,
	}
}

// Request describes one forwarding job: the target importer URL, the
// bearer token to authenticate with, extra form fields passed through
// untouched, and the sheet to split.
type Request struct {
	TargetURL string
	Token     string
	Fields    map[string]string
	Headers   []string
	Rows      [][]string
}

// BatchResult reports one batch post.
type BatchResult struct {
	Batch    int    `json:"batch"`
	RowCount int    `json:"row_count"`
	Success  bool   `json:"success"`
	Status   int    `json:"status_code,omitempty"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Summary aggregates all batch results. Success is true only when every
// batch succeeded.
type Summary struct {
	Success           bool          `json:"success"`
	TotalBatches      int           `json:"total_batches"`
	SuccessfulBatches int           `json:"successful_batches"`
	FailedBatches     int           `json:"failed_batches"`
	Results           []BatchResult `json:"results"`
	Errors            []BatchResult `json:"errors"`
}

// Send posts the sheet in batches. A failed batch never aborts the others;
// every outcome lands in the summary. Only context cancellation returns an
// error.
func (s *Sender) Send(ctx context.Context, req Request) (*Summary, error) {
	total := (len(req.Rows) + s.batchSize - 1) / s.batchSize
	results := make([]BatchResult, total)

	s.logger.Info("[BatchSender] forwarding %d rows in %d batches to %s",
		len(req.Rows), total, req.TargetURL)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for b := 0; b < total; b++ {
		b := b
		g.Go(func() error {
			start := b * s.batchSize
			end := start + s.batchSize
			if end > len(req.Rows) {
				end = len(req.Rows)
			}
			results[b] = s.sendBatch(ctx, req, b+1, req.Rows[start:end])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := &Summary{TotalBatches: total}
	for _, r := range results {
		if r.Success {
			summary.Results = append(summary.Results, r)
		} else {
			summary.Errors = append(summary.Errors, r)
		}
	}
	summary.SuccessfulBatches = len(summary.Results)
	summary.FailedBatches = len(summary.Errors)
	summary.Success = summary.FailedBatches == 0
	return summary, nil
}

func (s *Sender) sendBatch(ctx context.Context, req Request, num int, rows [][]string) BatchResult {
	result := BatchResult{Batch: num, RowCount: len(rows)}

	workbook, err := buildBatchWorkbook(req.Headers, rows)
	if err != nil {
		result.Error = fmt.Sprintf("failed to build batch workbook: %v", err)
		return result
	}

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file_excel"; filename="batch_%d.xlsx"`, num))
	header.Set("Content-Type", xlsxContentType)
	part, err := form.CreatePart(header)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if _, err := part.Write(workbook); err != nil {
		result.Error = err.Error()
		return result
	}
	for k, v := range req.Fields {
		if err := form.WriteField(k, v); err != nil {
			result.Error = err.Error()
			return result
		}
	}
	if err := form.Close(); err != nil {
		result.Error = err.Error()
		return result
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.TargetURL, body)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+req.Token)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		result.Error = err.Error()
		s.logger.Warn("[BatchSender] batch %d failed: %v", num, err)
		return result
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	result.Status = resp.StatusCode
	result.Response = snippet(string(respBody))

	if resp.StatusCode != http.StatusOK {
		result.Error = result.Response
		s.logger.Warn("[BatchSender] batch %d got HTTP %d", num, resp.StatusCode)
		return result
	}

	result.Success = true
	s.logger.Debug("[BatchSender] batch %d done (%d rows)", num, len(rows))
	return result
}

// buildBatchWorkbook writes one batch as a single-sheet workbook using the
// original header row, so the importer sees exactly the columns it was
// sent before splitting.
func buildBatchWorkbook(headers []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", "products")

	headerCells := make([]interface{}, len(headers))
	for i, h := range headers {
		headerCells[i] = h
	}
	if err := f.SetSheetRow("products", "A1", &headerCells); err != nil {
		return nil, err
	}

	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, c := range row {
			cells[j] = c
		}
		if err := f.SetSheetRow("products", fmt.Sprintf("A%d", i+2), &cells); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func snippet(s string) string {
	if len(s) > responseSnippet {
		return s[:responseSnippet]
	}
	return s
}
