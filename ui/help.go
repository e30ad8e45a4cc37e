package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"mori/knowledge"
	"mori/persona"
)

func renderHelp(width int) string {
	green := lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor)
	blue := lipgloss.NewStyle().Foreground(accentColor)

	keys := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Keys"),
		fmt.Sprintf("• %-13s Send message", "Enter"),
		fmt.Sprintf("• %-13s Next model", "Ctrl+N"),
		fmt.Sprintf("• %-13s Pull selected model", "Ctrl+P"),
		fmt.Sprintf("• %-13s Clear conversation", "Ctrl+L"),
		fmt.Sprintf("• %-13s Copy last reply", "Ctrl+Y"),
		fmt.Sprintf("• %-13s Scroll", "PgUp/PgDn"),
		fmt.Sprintf("• %-13s Toggle this help", "F1"),
		fmt.Sprintf("• %-13s Quit", "Esc"),
	)

	topics := []string{blue.Render("## Ask about")}
	for _, t := range persona.AskAbout {
		topics = append(topics, "• "+t)
	}
	topics = append(topics, "", blue.Render("## Knowledge"))
	for _, t := range knowledge.All() {
		topics = append(topics, "• "+t.Label())
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		green.Render(persona.Name+" - Help"),
		"",
		keys,
		"",
		lipgloss.JoinVertical(lipgloss.Left, topics...),
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Padding(1, 2).
		MaxWidth(max(width, 20)).
		Render(body)
}
