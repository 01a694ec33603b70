package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/vertinimas/portal/internal/application/report"
	"github.com/vertinimas/portal/internal/infrastructure/config"
)

const (
	defaultRenderTimeout = 30 * time.Second

	a4WidthMM  = 210
	a4HeightMM = 297
	marginMM   = 12
)

// ErrEmptyPDF is returned when Chrome produced no output
var ErrEmptyPDF = errors.New("generated PDF is empty")

// ChromedpRenderer prints HTML to PDF using the Chrome DevTools Protocol
type ChromedpRenderer struct {
	timeout     time.Duration
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRenderer creates a renderer. With a RemoteURL it attaches to a
// running browser, otherwise it launches a local headless Chrome per render.
func NewChromedpRenderer(cfg config.PDFConfig, logger *zap.Logger) *ChromedpRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRenderTimeout
	}

	r := &ChromedpRenderer{timeout: timeout, logger: logger}
	if cfg.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		return r
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return r
}

// printParams are the page settings passed to Page.printToPDF, in inches
type printParams struct {
	paperWidth   float64
	paperHeight  float64
	marginTop    float64
	marginRight  float64
	marginBottom float64
	marginLeft   float64
	landscape    bool
}

// a4Params returns A4 page settings. Wide tables switch to landscape.
func a4Params(columns int) printParams {
	p := printParams{
		paperWidth:   mmToInches(a4WidthMM),
		paperHeight:  mmToInches(a4HeightMM),
		marginTop:    mmToInches(marginMM),
		marginRight:  mmToInches(marginMM),
		marginBottom: mmToInches(marginMM),
		marginLeft:   mmToInches(marginMM),
	}
	if columns > 5 {
		p.landscape = true
	}
	return p
}

// Render prints html to PDF bytes
func (r *ChromedpRenderer) Render(ctx context.Context, html string, params printParams) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	// tie the browser tab to the request deadline
	stop := context.AfterFunc(ctx, browserCancel)
	defer stop()

	start := time.Now()
	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(params.paperWidth).
				WithPaperHeight(params.paperHeight).
				WithMarginTop(params.marginTop).
				WithMarginRight(params.marginRight).
				WithMarginBottom(params.marginBottom).
				WithMarginLeft(params.marginLeft).
				WithLandscape(params.landscape).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("PDF rendering timed out after %v: %w", r.timeout, err)
		}
		return nil, fmt.Errorf("chromedp execution failed: %w", err)
	}
	if len(pdf) == 0 {
		return nil, ErrEmptyPDF
	}

	r.logger.Debug("PDF rendered",
		zap.Int("bytes", len(pdf)),
		zap.Duration("duration", time.Since(start)),
	)
	return pdf, nil
}

// Close releases the browser allocator
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

// htmlPrinter is the part of ChromedpRenderer PDFWriter depends on
type htmlPrinter interface {
	Render(ctx context.Context, html string, params printParams) ([]byte, error)
}

// PDFWriter writes documents as A4 PDF files
type PDFWriter struct {
	printer htmlPrinter
}

// NewPDFWriter creates a PDF writer backed by a Chrome renderer
func NewPDFWriter(renderer *ChromedpRenderer) *PDFWriter {
	return &PDFWriter{printer: renderer}
}

// ContentType returns the MIME type of the output
func (w *PDFWriter) ContentType() string { return "application/pdf" }

// Extension returns the file extension of the output
func (w *PDFWriter) Extension() string { return "pdf" }

// Write renders the document to HTML and prints it
func (w *PDFWriter) Write(ctx context.Context, doc *report.Document) ([]byte, error) {
	html, err := RenderHTML(doc)
	if err != nil {
		return nil, err
	}
	return w.printer.Render(ctx, html, a4Params(len(doc.Columns)))
}

// mmToInches converts millimeters to inches
func mmToInches(mm float64) float64 {
	return mm / 25.4
}

var _ report.DocumentWriter = (*PDFWriter)(nil)
