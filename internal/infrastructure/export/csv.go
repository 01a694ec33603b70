// Package export renders report documents as CSV and PDF files.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"github.com/vertinimas/portal/internal/application/report"
)

// utf8BOM lets spreadsheet tools detect the encoding of non-ASCII labels
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes documents as semicolon-separated UTF-8 text
type CSVWriter struct {
	// Comma is the field separator, ';' when zero
	Comma rune
}

// NewCSVWriter creates a CSV writer using ';' as separator
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{Comma: ';'}
}

// ContentType returns the MIME type of the output
func (w *CSVWriter) ContentType() string { return "text/csv; charset=utf-8" }

// Extension returns the file extension of the output
func (w *CSVWriter) Extension() string { return "csv" }

// Write renders the title, period and summary lines, a blank line, then
// the table header and rows.
func (w *CSVWriter) Write(_ context.Context, doc *report.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}

	var buf bytes.Buffer
	buf.Write(utf8BOM)

	cw := csv.NewWriter(&buf)
	cw.Comma = w.Comma
	if cw.Comma == 0 {
		cw.Comma = ';'
	}

	records := [][]string{
		{doc.Title},
		{"Laikotarpis", doc.PeriodLabel},
		{"Sugeneruota", doc.GeneratedAt.Format("2006-01-02 15:04")},
	}
	for _, s := range doc.Summary {
		records = append(records, []string{s.Label, s.Value})
	}
	records = append(records, []string{})
	if len(doc.Columns) > 0 {
		records = append(records, doc.Columns)
	}
	records = append(records, doc.Rows...)

	if err := cw.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

var _ report.DocumentWriter = (*CSVWriter)(nil)
