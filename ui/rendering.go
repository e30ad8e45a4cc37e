package ui

import (
	"fmt"
	"regexp"
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	"github.com/mattn/go-runewidth"

	appmodel "mori/model"
	"mori/persona"
)

var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	ansiRegex       = regexp.MustCompile(`\x1b\[[0-9;]*m`)
)

// renderHistory lays out the whole conversation for the viewport.
func renderHistory(messages []appmodel.Message, width int, waiting bool, spin string) string {
	var content strings.Builder

	if len(messages) == 0 {
		content.WriteString(AssistantStyle.Render(persona.Name))
		content.WriteString("\n")
		content.WriteString(renderMarkdown(persona.Starter(0), width))
		content.WriteString("\n")
	}

	for _, msg := range messages {
		timestamp := DimStyle.Render(msg.Timestamp.Format("[15:04]"))

		switch msg.Role {
		case appmodel.RoleUser:
			content.WriteString(formatUserMessage(timestamp, UserStyle.Render("You"), msg.Content))
		case appmodel.RoleAssistant:
			fmt.Fprintf(&content, "%s %s\n%s\n\n", timestamp, AssistantStyle.Render(persona.Name), renderMarkdown(msg.Content, width))
		}
	}

	if waiting {
		fmt.Fprintf(&content, "%s %s\n", spin, DimStyle.Render("Mori is thinking..."))
	}

	return content.String()
}

func formatUserMessage(timestamp, role, content string) string {
	bar := UserStyle.Render("┃")

	var result strings.Builder
	fmt.Fprintf(&result, "%s %s %s\n", bar, timestamp, role)
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(&result, "%s %s\n", bar, line)
	}
	result.WriteString("\n")

	return result.String()
}

// renderMarkdown renders reply text for the terminal. Autolink stays off so
// URLs remain plain text the terminal can detect.
func renderMarkdown(content string, width int) string {
	if width < 20 {
		width = 20
	}

	content = mdLinkRegex.ReplaceAllString(content, "$2")

	ext := markdown.Extensions() &^ parser.Autolink
	p := parser.NewWithExtensions(ext)
	r := markdown.NewRenderer(width-4, 0)
	rendered := string(gomarkdown.Render(p.Parse([]byte(content)), r))

	rendered = inlineCodeRegex.ReplaceAllString(rendered, "\x1b[31m$1\x1b[0m")
	return strings.TrimRight(rendered, "\n")
}

// truncate cuts s to width terminal cells, counting wide runes as two.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}

func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}
