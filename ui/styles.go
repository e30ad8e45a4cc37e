package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dimColor     = lipgloss.Color("7")
	accentColor  = lipgloss.Color("12")
	successColor = lipgloss.Color("10")
	warningColor = lipgloss.Color("11")
	dangerColor  = lipgloss.Color("9")

	UserStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	// Mori's lines, no background
	AssistantStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	DimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	TitleStyle = lipgloss.NewStyle().
			Bold(true)

	QuoteStyle = lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(dangerColor).
			Bold(true)

	BorderStyle = lipgloss.NewStyle().
			Foreground(dimColor)
)

// FormatFooter formats alternating keys and descriptions:
// FormatFooter("Enter", "Send", "Esc", "Quit") gives "Enter Send  Esc Quit"
// with the descriptions in bold blue.
func FormatFooter(parts ...string) string {
	descStyle := lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	var result []string
	for i := 0; i+1 < len(parts); i += 2 {
		result = append(result, parts[i]+" "+descStyle.Render(parts[i+1]))
	}
	return strings.Join(result, "  ")
}
