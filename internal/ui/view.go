package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// chrome is the number of lines taken by header, favorites bar and footer.
const chrome = 3

// panelFrame is the horizontal and vertical space a bordered, padded panel
// adds around its content.
const (
	panelFrameW = 4
	panelFrameH = 2
)

type layout struct {
	compact bool
	listW   int
	listH   int
	outW    int
	outH    int
}

func (m Model) layout() layout {
	bodyH := max(4, m.height-chrome)
	if m.width < LayoutCompactWidth {
		listH := max(3, bodyH/2)
		return layout{
			compact: true,
			listW:   m.width,
			listH:   listH,
			outW:    m.width,
			outH:    max(3, bodyH-listH),
		}
	}
	listW := max(TabListMinWidth, m.width/3)
	return layout{
		listW: listW,
		listH: bodyH,
		outW:  max(10, m.width-listW),
		outH:  bodyH,
	}
}

// resizeOutput fits the output viewport and the PTYs to the output pane.
func (m *Model) resizeOutput() {
	l := m.layout()
	cols := max(1, l.outW-panelFrameW)
	// One line of the pane holds the terminal name.
	rows := max(1, l.outH-panelFrameH-1)
	m.output.Width = cols
	m.output.Height = rows
	if terms := m.nb.Terminals(); terms != nil {
		terms.Resize(cols, rows)
	}
}

func (m Model) renderMain() string {
	l := m.layout()
	list := m.renderTabList(l.listW, l.listH)
	out := m.renderOutput(l.outW, l.outH)

	var body string
	if l.compact {
		body = lipgloss.JoinVertical(lipgloss.Left, list, out)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, list, out)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderFavoritesBar(),
		body,
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	b := newBar(m.theme.Surface).
		add("termnote", styles.Logo).
		add(fmt.Sprintf("%d tabs", len(m.tabs)), styles.MutedText).
		add(fmt.Sprintf("%d/%d favorites", len(m.favorites), len(m.slots)), styles.MutedText)
	if m.locked {
		b.add("LOCKED", styles.DangerText)
	}
	if terms := m.nb.Terminals(); terms != nil {
		if n := len(terms.Terminals()); n > 0 {
			b.add(fmt.Sprintf("%d running", n), styles.InfoText)
		}
	}
	return b.render(m.width, "  ·  ")
}

// renderFavoritesBar shows only the slots that are bound.
func (m Model) renderFavoritesBar() string {
	styles := m.theme.Styles()
	b := newBar(m.theme.SurfaceAlt)
	shown := false
	for _, slot := range m.slots {
		if !slot.Bound {
			continue
		}
		shown = true
		b.add(fmt.Sprintf("%d", slot.Index+1), styles.AccentText.Bold(true))
		b.add(truncate(slot.Label, 24), styles.Favorite)
	}
	if !shown {
		b.add("No favorites. Press f on a tab to pin it.", styles.FaintText)
	}
	return b.render(m.width, " ")
}

func (m Model) renderTabList(width, height int) string {
	styles := m.theme.Styles()
	innerW := max(1, width-panelFrameW)
	innerH := max(1, height-panelFrameH)

	var lines []string
	if len(m.tabs) == 0 {
		lines = append(lines, styles.FaintText.Render("No tabs. Press a to add one."))
	}

	start := 0
	if m.selected >= innerH {
		start = m.selected - innerH + 1
	}
	end := min(len(m.tabs), start+innerH)
	for i := start; i < end; i++ {
		tab := m.tabs[i]
		marker := "  "
		if m.isFavorite(tab.ID) {
			marker = "★ "
		}
		label := truncate(tab.Label, innerW-2)
		if i == m.selected {
			lines = append(lines, styles.Selected.Render(padRight(marker+label, innerW)))
			continue
		}
		if marker != "  " {
			lines = append(lines, styles.Favorite.Render(marker)+styles.Text.Render(label))
			continue
		}
		lines = append(lines, marker+styles.Text.Render(label))
	}

	panel := styles.Focused
	if m.modal != nil {
		panel = styles.Panel
	}
	return panel.
		Width(width - 2).
		Height(innerH).
		Render(strings.Join(lines, "\n"))
}

func (m Model) renderOutput(width, height int) string {
	styles := m.theme.Styles()
	innerH := max(1, height-panelFrameH)

	title := styles.FaintText.Render("No terminal yet. Press enter to run the selected tab.")
	if m.outputTitle != "" {
		title = styles.AccentText.Render(truncate(m.outputTitle, max(1, width-panelFrameW)))
	}
	content := title + "\n" + m.output.View()
	return styles.Panel.
		Width(width - 2).
		Height(innerH).
		Render(content)
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	b := newBar(m.theme.Surface)
	if m.toast.Text != "" {
		b.add(m.toast.Text, styles.ToastStyle(m.toast.Level))
		return b.render(m.width, " ")
	}
	for _, binding := range m.keys.ShortHelp() {
		h := binding.Help()
		b.add(h.Key, styles.AccentText)
		b.add(h.Desc, styles.MutedText)
	}
	return b.render(m.width, " ")
}

func (m Model) isFavorite(id string) bool {
	for _, fav := range m.favorites {
		if fav.ID == id {
			return true
		}
	}
	return false
}

func helpLine(styles Styles, b key.Binding) string {
	h := b.Help()
	return styles.AccentText.Render(padRight(h.Key, 10)) + styles.Text.Render(h.Desc)
}
