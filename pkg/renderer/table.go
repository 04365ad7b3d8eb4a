package renderer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"
)

var (
	// ErrTimeout indicates the document could not be produced within the budget.
	ErrTimeout = errors.New("document rendering timed out")
	// ErrTooLarge indicates the produced document exceeded the byte budget.
	ErrTooLarge = errors.New("rendered document exceeds size budget")
	// ErrInvalidOutput indicates the rendering process returned something other than a PDF.
	ErrInvalidOutput = errors.New("rendered output is not a pdf document")
)

// Table is the structured content of a printable report.
type Table struct {
	Title        string
	GeneratedAt  string
	Meta         []string
	Columns      []string
	Rows         [][]string
	EmptyMessage string
}

// Budget bounds a single rendering call.
type Budget struct {
	Timeout  time.Duration
	MaxBytes int64
}

// Renderer converts a table into a binary document.
type Renderer interface {
	Render(ctx context.Context, table Table, budget Budget) ([]byte, error)
}

var documentTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body{font-family:Arial,sans-serif;font-size:10px}
table{width:100%;border-collapse:collapse;margin-top:15px}
th,td{border:1px solid #ccc;padding:4px 6px;text-align:left;word-break:break-word}
th{background-color:#f0f0f0;font-weight:bold}
h2,p{margin:0 0 5px 0}
h2{font-size:16px}
p{font-size:10px;color:#555}
</style>
</head>
<body>
<h2>{{.Title}}</h2>
{{- if .GeneratedAt}}
<p>Generated: {{.GeneratedAt}}</p>
{{- end}}
{{- range .Meta}}
<p>{{.}}</p>
{{- end}}
{{- if .EmptyMessage}}
<p class="empty">{{.EmptyMessage}}</p>
{{- else}}
<table>
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
{{- end}}
</body>
</html>
`))

// HTML renders the table as a standalone HTML page with every cell escaped.
func HTML(table Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, table); err != nil {
		return nil, fmt.Errorf("render report html: %w", err)
	}
	return buf.Bytes(), nil
}
