package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/termnote/internal/app"
	"github.com/five82/termnote/internal/notebook"
	"github.com/five82/termnote/internal/prefs"
	"github.com/five82/termnote/internal/state"
)

// Options configures the UI.
type Options struct {
	Context    context.Context
	Notebook   *app.Notebook
	Prefs      prefs.Prefs
	PrefsPath  string
	OutputTick time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx        context.Context
	nb         *app.Notebook
	prefs      prefs.Prefs
	prefsPath  string
	outputTick time.Duration
	keys       keyMap

	events      <-chan state.Event
	unsubscribe func()

	// UI state
	theme    Theme
	width    int
	height   int
	ready    bool
	showHelp bool
	modal    Modal

	// Data state
	tabs      []notebook.Entry
	favorites []notebook.Favorite
	slots     [notebook.SlotCount]notebook.Slot
	locked    bool
	revision  uint64
	selected  int

	// Output pane
	output      viewport.Model
	outputTitle string

	// Footer toast
	toast   app.Toast
	toastID int
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	outputTick := opts.OutputTick
	if outputTick <= 0 {
		outputTick = OutputRefresh
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	m := Model{
		ctx:        ctx,
		nb:         opts.Notebook,
		prefs:      opts.Prefs,
		prefsPath:  prefsPath,
		outputTick: outputTick,
		keys:       DefaultKeyMap(),
		theme:      GetTheme(opts.Prefs.Theme),
		output:     viewport.New(0, 0),
	}
	m.events, m.unsubscribe = m.nb.Notifier().Subscribe()
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForChange(m.events),
		outputTickCmd(m.outputTick),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeOutput()
		m.refreshOutput()
		return m, nil

	case changeMsg:
		m.revision = msg.Revision
		m.refresh()
		return m, waitForChange(m.events)

	case outputTickMsg:
		m.refreshOutput()
		return m, outputTickCmd(m.outputTick)

	case submitMsg:
		return m.handleSubmit(msg)

	case toastExpiredMsg:
		if int(msg) == m.toastID {
			m.toast = app.Toast{}
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.modal != nil {
		var cmd tea.Cmd
		var done bool
		m.modal, cmd, done = m.modal.Update(msg, m.keys)
		if done {
			m.modal = nil
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		var cmd tea.Cmd
		var done bool
		m.modal, cmd, done = m.modal.Update(msg, m.keys)
		if done {
			m.modal = nil
		}
		return m, cmd
	}

	keys := m.keys
	switch {
	case key.Matches(msg, keys.Quit):
		m.unsubscribe()
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		_ = prefs.Save(m.prefsPath, m.prefs)
		return m, nil

	case key.Matches(msg, keys.ToggleLock):
		return m.showToast(m.nb.ToggleLock())

	case key.Matches(msg, keys.Up):
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case key.Matches(msg, keys.Down):
		if m.selected < len(m.tabs)-1 {
			m.selected++
		}
		return m, nil

	case key.Matches(msg, keys.Top):
		m.selected = 0
		return m, nil

	case key.Matches(msg, keys.Bottom):
		m.selected = max(0, len(m.tabs)-1)
		return m, nil

	case key.Matches(msg, keys.PageUp):
		m.output.HalfPageUp()
		return m, nil

	case key.Matches(msg, keys.PageDown):
		m.output.HalfPageDown()
		return m, nil

	case key.Matches(msg, keys.Add):
		m.modal = newPrompt("Add tab", "command to run", "", actionAdd, "")
		return m, nil

	case key.Matches(msg, keys.Export):
		m.modal = newPrompt("Export tabs to", "", m.prefs.SuggestedPath(), actionExport, "")
		return m, nil

	case key.Matches(msg, keys.Import):
		m.modal = newPrompt("Import tabs from", "", m.prefs.SuggestedPath(), actionImport, "")
		return m, nil

	case key.Matches(msg, keys.Favorites):
		if len(m.favorites) == 0 {
			return m.showToast(m.nb.RunFavorite(""))
		}
		m.modal = newPicker("Favorites", "enter run · 1-5 run slot · esc close", m.favoriteItems(), actionRunFavorite)
		return m, nil

	case key.Matches(msg, keys.ManageFavorites):
		if len(m.favorites) == 0 {
			return m.showToast(m.nb.RemoveFavorite(""))
		}
		m.modal = newPicker("Manage favorites", "enter or d remove · esc close", m.favoriteItems(), actionRemoveFavorite).
			withRemove(actionRemoveFavorite)
		return m, nil
	}

	for i, slot := range keys.Slots {
		if key.Matches(msg, slot) {
			return m.showToast(m.nb.RunSlot(i))
		}
	}

	entry, ok := m.current()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, keys.Run):
		return m.showToast(m.nb.RunTab(entry.ID))
	case key.Matches(msg, keys.Rename):
		m.modal = newPrompt("Rename tab", "", entry.Label, actionRename, entry.ID)
	case key.Matches(msg, keys.Delete):
		m.modal = newConfirm("Delete \""+truncate(entry.Label, ModalWidth-16)+"\"?", actionDelete, entry.ID)
	case key.Matches(msg, keys.Copy):
		return m.showToast(m.nb.CopyLabel(entry.ID))
	case key.Matches(msg, keys.Favorite):
		return m.showToast(m.nb.AddFavorite(entry.ID))
	}
	return m, nil
}

// handleSubmit runs the command a confirmed modal asked for.
func (m Model) handleSubmit(msg submitMsg) (tea.Model, tea.Cmd) {
	var toast app.Toast
	switch msg.action {
	case actionAdd:
		toast = m.nb.AddTab(msg.value)
		if !toast.Failed() {
			m.refresh()
			m.selected = max(0, len(m.tabs)-1)
		}
	case actionRename:
		toast = m.nb.RenameTab(msg.id, msg.value)
	case actionDelete:
		toast = m.nb.DeleteTab(msg.id)
	case actionRunFavorite:
		toast = m.nb.RunFavorite(msg.id)
	case actionRemoveFavorite:
		toast = m.nb.RemoveFavorite(msg.id)
	case actionExport:
		toast = m.nb.ExportTabs(msg.value)
		m.rememberPath(msg.value, toast)
	case actionImport:
		toast = m.nb.ImportTabs(msg.value)
		m.rememberPath(msg.value, toast)
	}
	return m.showToast(toast)
}

func (m *Model) rememberPath(path string, toast app.Toast) {
	path = strings.TrimSpace(path)
	if toast.Level == app.LevelError || path == "" {
		return
	}
	m.prefs.LastPath = path
	_ = prefs.Save(m.prefsPath, m.prefs)
}

func (m Model) showToast(t app.Toast) (tea.Model, tea.Cmd) {
	m.toast = t
	m.toastID++
	id := m.toastID
	m.refresh()
	m.refreshOutput()
	return m, tea.Tick(ToastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg(id)
	})
}

// refresh re-reads the notebook and clamps the selection.
func (m *Model) refresh() {
	m.tabs = m.nb.Tabs()
	m.favorites = m.nb.Favorites()
	m.slots = m.nb.Slots()
	m.locked = m.nb.Locked()
	if m.selected >= len(m.tabs) {
		m.selected = max(0, len(m.tabs)-1)
	}
}

func (m *Model) refreshOutput() {
	terms := m.nb.Terminals()
	if terms == nil {
		return
	}
	focused, ok := terms.Focused()
	if !ok {
		m.outputTitle = ""
		m.output.SetContent("")
		return
	}
	atBottom := m.output.AtBottom()
	m.outputTitle = focused.Name
	m.output.SetContent(tailLines(focused.PlainOutput(), 0))
	if atBottom {
		m.output.GotoBottom()
	}
}

func (m Model) current() (notebook.Entry, bool) {
	if m.selected < 0 || m.selected >= len(m.tabs) {
		return notebook.Entry{}, false
	}
	return m.tabs[m.selected], true
}

func (m Model) favoriteItems() []pickerItem {
	items := make([]pickerItem, len(m.favorites))
	for i, fav := range m.favorites {
		items[i] = pickerItem{id: fav.ID, label: fav.Label}
	}
	return items
}

// Messages

type changeMsg state.Event

type outputTickMsg time.Time

type toastExpiredMsg int

// Commands

func waitForChange(events <-chan state.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return changeMsg(ev)
	}
}

func outputTickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return outputTickMsg(t)
	})
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(opts Options) error {
	m := New(opts)
	defer m.unsubscribe()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
