package export

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/vertinimas/portal/internal/application/report"
)

//go:embed templates/report.html
var templateFS embed.FS

var reportTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html"))

// RenderHTML renders a document as a standalone, printable HTML page
func RenderHTML(doc *report.Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("document is nil")
	}
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("failed to render report template: %w", err)
	}
	return buf.String(), nil
}
