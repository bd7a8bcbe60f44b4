package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var helpSections = []string{"Navigation", "Tabs", "Favorites", "Files", "General"}

func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Logo.Render("termnote keys"))
	b.WriteString("\n")
	for i, group := range m.keys.FullHelp() {
		b.WriteString("\n")
		if i < len(helpSections) {
			b.WriteString(styles.MutedText.Bold(true).Render(helpSections[i]))
			b.WriteString("\n")
		}
		for _, binding := range group {
			b.WriteString(helpLine(styles, binding))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("Press any key to close"))

	box := styles.Modal.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
