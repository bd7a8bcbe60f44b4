package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// bar builds a single full-width line whose background is continuous.
// Styled segments are rendered word by word so the reset codes between them
// never leave unpainted gaps.
type bar struct {
	bg    lipgloss.Color
	parts []string
}

func newBar(bgColor string) *bar {
	return &bar{bg: lipgloss.Color(bgColor)}
}

// add appends text rendered with style on the bar's background.
func (b *bar) add(text string, style lipgloss.Style) *bar {
	if text == "" {
		return b
	}
	wordStyle := style.Background(b.bg)
	space := lipgloss.NewStyle().Background(b.bg).Render(" ")
	words := strings.Split(text, " ")
	rendered := make([]string, len(words))
	for i, w := range words {
		if w != "" {
			rendered[i] = wordStyle.Render(w)
		}
	}
	b.parts = append(b.parts, strings.Join(rendered, space))
	return b
}

// render joins the segments with sep and pads the line to width.
func (b *bar) render(width int, sep string) string {
	bgStyle := lipgloss.NewStyle().Background(b.bg)
	line := strings.Join(b.parts, bgStyle.Render(sep))
	return bgStyle.Width(width).MaxWidth(width).Render(line)
}
