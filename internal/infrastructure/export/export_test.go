package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertinimas/portal/internal/application/report"
	"github.com/vertinimas/portal/internal/infrastructure/config"
)

func sampleDocument() *report.Document {
	return &report.Document{
		Title:       "Pajamų ataskaita",
		PeriodLabel: "2024-05-01 - 2024-05-31",
		GeneratedAt: time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC),
		Summary: []report.SummaryLine{
			{Label: "Pajamos, EUR", Value: "350.50"},
		},
		Columns: []string{"Laikotarpis", "Užsakymai", "Pajamos, EUR"},
		Rows: [][]string{
			{"2024-05-01", "1", "100.00"},
			{"2024-05-02", "0", "0.00"},
		},
	}
}

func TestCSVWriter_Write(t *testing.T) {
	w := NewCSVWriter()
	assert.Equal(t, "text/csv; charset=utf-8", w.ContentType())
	assert.Equal(t, "csv", w.Extension())

	data, err := w.Write(context.Background(), sampleDocument())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, utf8BOM))

	r := csv.NewReader(bytes.NewReader(data[len(utf8BOM):]))
	r.Comma = ';'
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	// the blank separator line is skipped by the reader
	assert.Equal(t, [][]string{
		{"Pajamų ataskaita"},
		{"Laikotarpis", "2024-05-01 - 2024-05-31"},
		{"Sugeneruota", "2024-06-01 09:30"},
		{"Pajamos, EUR", "350.50"},
		{"Laikotarpis", "Užsakymai", "Pajamos, EUR"},
		{"2024-05-01", "1", "100.00"},
		{"2024-05-02", "0", "0.00"},
	}, records)
	assert.Contains(t, string(data), "\n\n")
}

func TestCSVWriter_QuotesSeparators(t *testing.T) {
	doc := sampleDocument()
	doc.Rows = [][]string{{"UAB \"Namai\"; Vilnius", "1", "0.00"}}

	data, err := NewCSVWriter().Write(context.Background(), doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"UAB ""Namai""; Vilnius";1;0.00`)
}

func TestCSVWriter_NilDocument(t *testing.T) {
	_, err := NewCSVWriter().Write(context.Background(), nil)
	assert.Error(t, err)
}

func TestRenderHTML(t *testing.T) {
	doc := sampleDocument()
	doc.Rows = append(doc.Rows, []string{"<script>alert(1)</script>", "0", "0.00"})

	html, err := RenderHTML(doc)
	require.NoError(t, err)

	assert.Contains(t, html, "<title>Pajamų ataskaita</title>")
	assert.Contains(t, html, "Laikotarpis: 2024-05-01 - 2024-05-31")
	assert.Contains(t, html, "Sugeneruota: 2024-06-01 09:30")
	assert.Contains(t, html, "<th>Užsakymai</th>")
	assert.Contains(t, html, "<td>100.00</td>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.NotContains(t, html, "<script>")
}

func TestRenderHTML_EmptyRows(t *testing.T) {
	doc := sampleDocument()
	doc.Rows = nil

	html, err := RenderHTML(doc)
	require.NoError(t, err)
	assert.Contains(t, html, `<td colspan="3">Duomenų nėra</td>`)
}

func TestA4Params(t *testing.T) {
	p := a4Params(3)
	assert.InDelta(t, 8.27, p.paperWidth, 0.01)
	assert.InDelta(t, 11.69, p.paperHeight, 0.01)
	assert.InDelta(t, mmToInches(12), p.marginLeft, 0.001)
	assert.False(t, p.landscape)

	assert.True(t, a4Params(6).landscape)
}

type fakePrinter struct {
	html   string
	params printParams
	err    error
}

func (p *fakePrinter) Render(_ context.Context, html string, params printParams) ([]byte, error) {
	p.html = html
	p.params = params
	if p.err != nil {
		return nil, p.err
	}
	return []byte("%PDF-1.4"), nil
}

func TestPDFWriter_Write(t *testing.T) {
	printer := &fakePrinter{}
	w := &PDFWriter{printer: printer}

	assert.Equal(t, "application/pdf", w.ContentType())
	assert.Equal(t, "pdf", w.Extension())

	data, err := w.Write(context.Background(), sampleDocument())
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)
	assert.Contains(t, printer.html, "<h1>Pajamų ataskaita</h1>")
	assert.False(t, printer.params.landscape)
}

func TestPDFWriter_PropagatesRenderError(t *testing.T) {
	w := &PDFWriter{printer: &fakePrinter{err: errors.New("chrome not found")}}

	_, err := w.Write(context.Background(), sampleDocument())
	assert.ErrorContains(t, err, "chrome not found")
}

func TestNewChromedpRenderer_Defaults(t *testing.T) {
	r := NewChromedpRenderer(config.PDFConfig{NoSandbox: true}, nil)
	defer r.Close()

	assert.Equal(t, defaultRenderTimeout, r.timeout)
	assert.NotNil(t, r.allocCtx)

	remote := NewChromedpRenderer(config.PDFConfig{RemoteURL: "ws://127.0.0.1:9222", Timeout: time.Second}, nil)
	defer remote.Close()
	assert.Equal(t, time.Second, remote.timeout)
}
