package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// action identifies what a submitted modal asks the model to do.
type action int

const (
	actionAdd action = iota
	actionRename
	actionDelete
	actionRunFavorite
	actionRemoveFavorite
	actionExport
	actionImport
)

// submitMsg is emitted when a modal is confirmed.
type submitMsg struct {
	action action
	id     string
	value  string
}

func submit(a action, id, value string) tea.Cmd {
	return func() tea.Msg {
		return submitMsg{action: a, id: id, value: value}
	}
}

// promptModal asks for one line of text.
type promptModal struct {
	title  string
	hint   string
	action action
	id     string
	input  textinput.Model
}

func newPrompt(title, hint, value string, a action, id string) *promptModal {
	in := textinput.New()
	in.Prompt = "> "
	in.CharLimit = 1024
	in.Width = ModalWidth - 8
	in.SetValue(value)
	in.CursorEnd()
	in.Focus()
	return &promptModal{title: title, hint: hint, action: a, id: id, input: in}
}

func (p *promptModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, keys.Escape):
			return p, nil, true
		case key.Matches(k, keys.Confirm):
			return p, submit(p.action, p.id, p.input.Value()), true
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd, false
}

func (p *promptModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(p.title))
	b.WriteString("\n\n")
	b.WriteString(p.input.View())
	b.WriteString("\n\n")
	hint := "enter confirm · esc cancel"
	if p.hint != "" {
		hint = p.hint + " · " + hint
	}
	b.WriteString(styles.FaintText.Render(hint))
	return placeModal(theme, width, height, b.String())
}

// confirmModal asks a yes/no question.
type confirmModal struct {
	question string
	action   action
	id       string
}

func newConfirm(question string, a action, id string) *confirmModal {
	return &confirmModal{question: question, action: a, id: id}
}

func (c *confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case key.Matches(k, keys.Yes):
		return c, submit(c.action, c.id, ""), true
	case key.Matches(k, keys.No):
		return c, nil, true
	}
	return c, nil, false
}

func (c *confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	body := styles.Text.Render(c.question) + "\n\n" +
		styles.FaintText.Render("y confirm · n cancel")
	return placeModal(theme, width, height, body)
}

type pickerItem struct {
	id    string
	label string
}

// pickerModal selects one item from a short list.
type pickerModal struct {
	title  string
	hint   string
	items  []pickerItem
	cursor int
	action action
	// removeAction, when set, is emitted by the Remove key.
	removeAction *action
}

func newPicker(title, hint string, items []pickerItem, a action) *pickerModal {
	return &pickerModal{title: title, hint: hint, items: items, action: a}
}

func (p *pickerModal) withRemove(a action) *pickerModal {
	p.removeAction = &a
	return p
}

func (p *pickerModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil, false
	}
	switch {
	case key.Matches(k, keys.Escape), key.Matches(k, keys.Quit):
		return p, nil, true
	case key.Matches(k, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(k, keys.Down):
		if p.cursor < len(p.items)-1 {
			p.cursor++
		}
	case key.Matches(k, keys.Confirm):
		if item, ok := p.selected(); ok {
			return p, submit(p.action, item.id, item.label), true
		}
		return p, nil, true
	case p.removeAction != nil && key.Matches(k, keys.Remove):
		if item, ok := p.selected(); ok {
			return p, submit(*p.removeAction, item.id, item.label), true
		}
	default:
		for i, slot := range keys.Slots {
			if key.Matches(k, slot) && i < len(p.items) {
				p.cursor = i
				return p, submit(p.action, p.items[i].id, p.items[i].label), true
			}
		}
	}
	return p, nil, false
}

func (p *pickerModal) selected() (pickerItem, bool) {
	if p.cursor < 0 || p.cursor >= len(p.items) {
		return pickerItem{}, false
	}
	return p.items[p.cursor], true
}

func (p *pickerModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(p.title))
	b.WriteString("\n\n")

	start := 0
	if p.cursor >= PickerMaxHeight {
		start = p.cursor - PickerMaxHeight + 1
	}
	end := min(len(p.items), start+PickerMaxHeight)
	for i := start; i < end; i++ {
		line := fmt.Sprintf("%d  %s", i+1, truncate(p.items[i].label, ModalWidth-12))
		if i == p.cursor {
			b.WriteString(styles.Selected.Render(padRight(line, ModalWidth-6)))
		} else {
			b.WriteString(styles.Text.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(p.hint))
	return placeModal(theme, width, height, b.String())
}

func placeModal(theme Theme, width, height int, body string) string {
	box := theme.Styles().Modal.Width(ModalWidth).Render(body)
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
