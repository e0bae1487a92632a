package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/tmux-wax/internal/errors"
)

// RenderError formats err for stderr. The first line (what failed) is
// highlighted; cause and suggestion lines follow unstyled.
func RenderError(err error) string {
	if err == nil {
		return ""
	}

	text := err.Error()
	if errors.Code(err) == "" {
		text = SymbolFail + " " + text
	}
	text = strings.TrimRight(text, "\n")

	headline, rest, _ := strings.Cut(text, "\n")

	errorStyle := lipgloss.NewStyle().
		Foreground(ColorError).
		Bold(true)

	var b strings.Builder
	b.WriteString(errorStyle.Render(headline))
	b.WriteString("\n")
	if rest != "" {
		b.WriteString(rest)
		b.WriteString("\n")
	}
	return b.String()
}
