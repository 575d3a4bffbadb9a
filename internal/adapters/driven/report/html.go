package report

import (
	"context"
	"fmt"
	"html/template"
	"os"

	"github.com/halcyon-forensics/imgtriage/internal/core/domain"
	"github.com/halcyon-forensics/imgtriage/internal/core/ports/driven"
)

// Ensure HTMLReporter implements the interface.
var _ driven.Reporter = (*HTMLReporter)(nil)

// HTMLReporter renders an evidence-card report for analyst review.
// Cards appear in final ranking order; the full per-database detail
// follows below them.
type HTMLReporter struct {
	tmpl *template.Template
}

// NewHTML creates an HTML reporter.
func NewHTML() *HTMLReporter {
	return &HTMLReporter{
		tmpl: template.Must(template.New("report").Funcs(template.FuncMap{
			"priorityLabel": priorityLabel,
			"add1":          func(i int) int { return i + 1 },
		}).Parse(reportTemplate)),
	}
}

// Write renders the result to path.
func (r *HTMLReporter) Write(_ context.Context, result *domain.TriageResult, path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating html report: %w", err)
	}
	defer f.Close()

	if err := r.tmpl.Execute(f, result); err != nil {
		return fmt.Errorf("rendering html report: %w", err)
	}
	return nil
}

func priorityLabel(p int) string {
	switch p {
	case domain.PriorityCritical:
		return "critical"
	case domain.PriorityImportant:
		return "important"
	case domain.PriorityUseful:
		return "useful"
	default:
		return "background"
	}
}

const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Device Database Triage Report</title>
<style>
  body { font-family: 'Segoe UI', sans-serif; background: #0f172a; color: #e2e8f0; margin: 0; padding: 24px; }
  h1, h2, h3 { color: #f8fafc; }
  .card { background: #1e293b; border-radius: 8px; border-top: 4px solid #0891b2; padding: 16px; margin: 12px 0; }
  .card.critical { border-top-color: #dc2626; }
  .card.important { border-top-color: #ea580c; }
  .badge { display: inline-block; padding: 2px 10px; border-radius: 10px; font-size: 0.8em; background: #0891b2; }
  .badge.critical { background: #dc2626; }
  .badge.important { background: #ea580c; }
  table { border-collapse: collapse; margin: 8px 0; }
  th, td { border: 1px solid #334155; padding: 4px 8px; font-size: 0.85em; }
  .error { color: #f87171; }
  .meta { color: #94a3b8; font-size: 0.9em; }
</style>
</head>
<body>
<h1>Device Database Triage Report</h1>
<p class="meta">Data root: {{.Root}}</p>
{{if .Principal}}<p class="meta">Principal identity: {{.Principal}}</p>{{end}}

<h2>Ranked Evidence ({{len .Evidence}})</h2>
{{range $i, $item := .Evidence}}
<div class="card {{priorityLabel $item.Priority}}">
  <h3>#{{add1 $i}} {{$item.AppID}} <span class="badge {{priorityLabel $item.Priority}}">{{priorityLabel $item.Priority}}</span></h3>
  <p class="meta">{{$item.DBPath}} — {{$item.Category}}, {{$item.TotalRows}} rows across {{$item.TableCount}} tables</p>
  {{if $item.ScriptTables}}<p>Target-script tables: {{range $item.ScriptTables}}<code>{{.}}</code> {{end}}</p>{{end}}
  {{if $item.EmailTables}}<p>Email tables: {{range $item.EmailTables}}<code>{{.}}</code> {{end}}</p>{{end}}
  {{if $item.Principal}}<p class="meta">Account: {{$item.Principal}}</p>{{end}}
</div>
{{else}}
<p>No databases met the inclusion criteria.</p>
{{end}}

<h2>Database Detail</h2>
{{$dbs := .Databases}}
{{range $path := .DatabaseOrder}}
<h3>{{$path}}</h3>
{{range index $dbs $path}}
  {{if .Failed}}
  <p class="error">{{.Table}}: {{.Err}}</p>
  {{else}}
  <h4>{{.Table}}{{if .Important}} (important){{end}} — {{.RowCount}} rows</h4>
  <table>
    <tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
    {{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}
  </table>
  {{end}}
{{end}}
{{end}}
</body>
</html>
`
