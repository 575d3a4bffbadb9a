// Package report renders triage results for analysts. Emitters consume
// only the structured TriageResult; they carry no pipeline logic.
package report

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/halcyon-forensics/imgtriage/internal/core/domain"
	"github.com/halcyon-forensics/imgtriage/internal/core/ports/driven"
)

// Ensure MarkdownReporter implements the interface.
var _ driven.Reporter = (*MarkdownReporter)(nil)

// MarkdownReporter writes the full introspection detail as Markdown:
// ranked evidence first, then every analysed database in discovery order.
type MarkdownReporter struct{}

// NewMarkdown creates a Markdown reporter.
func NewMarkdown() *MarkdownReporter {
	return &MarkdownReporter{}
}

// Write renders the result to path.
func (r *MarkdownReporter) Write(_ context.Context, result *domain.TriageResult, path string) error {
	var b strings.Builder

	b.WriteString("# Device Database Triage Report\n\n")
	fmt.Fprintf(&b, "Data root: `%s`\n\n", result.Root)
	if result.Principal != "" {
		fmt.Fprintf(&b, "Principal identity: `%s`\n\n", result.Principal)
	}

	b.WriteString("## Ranked Evidence\n\n")
	if len(result.Evidence) == 0 {
		b.WriteString("No databases met the inclusion criteria.\n\n")
	}
	for i, item := range result.Evidence {
		fmt.Fprintf(&b, "%d. **%s** — `%s` (%s, priority %d, %d rows)\n",
			i+1, item.AppID, item.DBPath, item.Category, item.Priority, item.TotalRows)
		if len(item.ScriptTables) > 0 {
			fmt.Fprintf(&b, "   - target-script tables: %s\n", strings.Join(item.ScriptTables, ", "))
		}
		if len(item.EmailTables) > 0 {
			fmt.Fprintf(&b, "   - email tables: %s\n", strings.Join(item.EmailTables, ", "))
		}
	}
	b.WriteString("\n")

	for _, dbPath := range result.DatabaseOrder {
		fmt.Fprintf(&b, "## Database: %s\n\n", dbPath)
		for _, t := range result.Databases[dbPath] {
			writeTable(&b, t)
		}
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("writing markdown report: %w", err)
	}
	return nil
}

func writeTable(b *strings.Builder, t domain.TableSample) {
	marker := ""
	if t.Important {
		marker = " (important)"
	}
	fmt.Fprintf(b, "### Table: %s%s\n\n", t.Table, marker)

	if t.Failed() {
		fmt.Fprintf(b, "Error: %s\n\n", t.Err)
		return
	}

	fmt.Fprintf(b, "Columns: %s\n\n", strings.Join(t.Columns, ", "))
	fmt.Fprintf(b, "Rows: %d", t.RowCount)
	if c := t.Classification; c.HasTargetScript || c.HasEmail {
		fmt.Fprintf(b, " — target-script chars: %d, emails: %d", c.TargetScriptChars, c.EmailCount)
	}
	b.WriteString("\n\nSample Rows:\n\n")
	for _, row := range t.Rows {
		fmt.Fprintf(b, "    %s\n", strings.Join(row, " | "))
	}
	b.WriteString("\n")
}
