package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/halcyon-forensics/imgtriage/internal/core/domain"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#06B6D4"))

	criticalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F38BA8"))

	importantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F9E2AF"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))
)

// renderSummary builds the terminal view of the ranked evidence list.
func renderSummary(result *domain.TriageResult) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Triage Summary"))
	fmt.Fprintf(&b, "\n%s\n",
		mutedStyle.Render(fmt.Sprintf("%d databases analysed, %d evidence items",
			len(result.DatabaseOrder), len(result.Evidence))))

	if result.Principal != "" {
		fmt.Fprintf(&b, "Principal identity: %s\n", importantStyle.Render(result.Principal))
	}

	for i, item := range result.Evidence {
		line := fmt.Sprintf("%2d. %s  %s  (%s, %d rows, %d tables)",
			i+1, item.AppID, item.DBPath, item.Category, item.TotalRows, item.TableCount())
		switch item.Priority {
		case domain.PriorityCritical:
			line = criticalStyle.Render(line)
		case domain.PriorityImportant:
			line = importantStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(result.Evidence) == 0 {
		b.WriteString(mutedStyle.Render("No databases met the inclusion criteria.\n"))
	}

	return b.String()
}
