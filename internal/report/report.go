// Package report renders a scrape run into a standalone HTML page: the
// review table, the word-cloud image, and a link to the CSV download.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/sammyzayn123/review-scraper/internal/types"
)

// Writer renders run results to HTML.
type Writer struct {
	tmpl   *template.Template
	logger *slog.Logger
}

// NewWriter parses the report template.
func NewWriter(logger *slog.Logger) (*Writer, error) {
	tmpl, err := template.New("report").Parse(reportHTML)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	return &Writer{
		tmpl:   tmpl,
		logger: logger.With("component", "report"),
	}, nil
}

type reportData struct {
	SearchTerm string
	Columns    []string
	Rows       [][]string
	CSVPath    string
	ImagePath  string
}

// Render produces the HTML page bytes for one run.
func (w *Writer) Render(searchTerm string, table *types.ReviewTable, csvPath, imagePath string) ([]byte, error) {
	data := reportData{
		SearchTerm: searchTerm,
		Columns:    types.Columns,
		Rows:       table.Rows(),
		CSVPath:    csvPath,
		ImagePath:  imagePath,
	}

	var buf bytes.Buffer
	if err := w.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	w.logger.Debug("report rendered", "term", searchTerm, "rows", table.Len(), "bytes", buf.Len())
	return buf.Bytes(), nil
}

const reportHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Reviews — {{.SearchTerm}}</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body { font-family: 'Inter', -apple-system, system-ui, sans-serif; background: #0f172a; color: #e2e8f0; min-height: 100vh; }
        .header { background: linear-gradient(135deg, #1e293b, #334155); padding: 1.5rem 2rem; border-bottom: 1px solid #475569; display: flex; justify-content: space-between; align-items: center; }
        .header h1 { font-size: 1.5rem; background: linear-gradient(135deg, #38bdf8, #818cf8); background-clip: text; -webkit-background-clip: text; -webkit-text-fill-color: transparent; }
        .header a { color: #38bdf8; text-decoration: none; font-size: 0.875rem; }
        .wrap { padding: 2rem; }
        .cloud { text-align: center; margin-bottom: 2rem; }
        .cloud img { max-width: 100%; border: 1px solid #334155; border-radius: 12px; }
        table { width: 100%; border-collapse: collapse; background: #1e293b; border: 1px solid #334155; border-radius: 12px; overflow: hidden; }
        th { background: #334155; padding: 0.75rem 1rem; text-align: left; font-size: 0.75rem; text-transform: uppercase; letter-spacing: 0.05em; color: #94a3b8; }
        td { padding: 0.75rem 1rem; border-top: 1px solid #334155; font-size: 0.875rem; }
        tr:hover td { background: #273449; }
        .empty { padding: 2rem; text-align: center; color: #64748b; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Reviews for “{{.SearchTerm}}”</h1>
        <a href="{{.CSVPath}}" download>Download CSV</a>
    </div>
    <div class="wrap">
        {{if .ImagePath}}<div class="cloud"><img src="{{.ImagePath}}" alt="word cloud"></div>{{end}}
        <table>
            <tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
            {{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}
        </table>
        {{if not .Rows}}<div class="empty">No reviews were extracted for this search.</div>{{end}}
    </div>
</body>
</html>`
