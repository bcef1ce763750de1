// Package tui is the interactive presentation layer. It renders the
// controller's list and turns key presses into add/toggle/remove intents;
// every intent is persisted by the controller before the next key is handled.
package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/tada/internal/app"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/ui"
)

const maxDescription = 200

// listItem adapts model.Item to bubbles/list.Item.
type listItem struct{ model.Item }

func (i listItem) FilterValue() string { return i.Description }

// itemDelegate renders one item per line.
type itemDelegate struct{}

func (d itemDelegate) Height() int                         { return 1 }
func (d itemDelegate) Spacing() int                        { return 0 }
func (d itemDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	t := ui.Current()
	text := ui.Truncate(it.Description, m.Width()-6)
	if it.Completed {
		text = t.Done.Render(text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render(">") + " "
	}
	fmt.Fprintf(w, "%s%s %s", prefix, ui.Box(it.Item), text)
}

// changeFeed receives store notifications. It is shared by pointer so every
// copy of Model sees the same pending snapshot.
type changeFeed struct {
	items []model.Item
	dirty bool
}

type keyMap struct {
	Add, Toggle, Remove, Quit key.Binding
}

var keys = keyMap{
	Add:    key.NewBinding(key.WithKeys("a", "+"), key.WithHelp("a", "add")),
	Toggle: key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
	Remove: key.NewBinding(key.WithKeys("d", "-"), key.WithHelp("d", "remove")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the bubbletea model for the list screen.
type Model struct {
	ctrl *app.Controller
	feed *changeFeed
	stop func()

	list  list.Model
	input textinput.Model

	adding    bool
	status    string
	statusErr bool

	width, height int
}

// New builds the model over ctrl. notice, if non-empty, is shown as an error
// in the status line (used for a startup load failure).
func New(ctrl *app.Controller, notice string) Model {
	feed := &changeFeed{}
	stop := ctrl.Store().Subscribe(func(items []model.Item) {
		feed.items = items
		feed.dirty = true
	})

	l := list.New(toListItems(ctrl.Items()), itemDelegate{}, 80, 20)
	l.SetShowTitle(true)
	l.SetShowHelp(true)
	l.SetShowStatusBar(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = lipgloss.NewStyle()
	l.Styles.TitleBar = lipgloss.NewStyle()
	l.Styles.HelpStyle = ui.Current().Muted
	l.SetStatusBarItemName("item", "items")
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Toggle, keys.Remove, keys.Quit}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys
	l.Title = ui.Header(ctrl.Items())

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Add a new TODO"
	ti.CharLimit = maxDescription

	m := Model{
		ctrl:   ctrl,
		feed:   feed,
		stop:   stop,
		list:   l,
		input:  ti,
		width:  80,
		height: 24,
	}
	if notice != "" {
		m.status, m.statusErr = notice, true
	}
	return m
}

// Run starts the program and blocks until the user quits.
func Run(ctrl *app.Controller, notice string) error {
	m := New(ctrl, notice)
	defer m.stop()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.sync()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = ws.Width, ws.Height
		m.resize()
		return m, nil
	}

	if m.adding {
		return m.updateAdding(msg)
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, keys.Quit):
			return m, tea.Quit
		case key.Matches(km, keys.Add):
			m.adding = true
			m.input.SetValue("")
			m.resize()
			return m, m.input.Focus()
		case key.Matches(km, keys.Toggle):
			if len(m.list.Items()) == 0 {
				return m, nil
			}
			m.report(m.ctrl.ToggleItem(m.list.Index()), "toggled")
			return m, nil
		case key.Matches(km, keys.Remove):
			if len(m.list.Items()) == 0 {
				return m, nil
			}
			it, err := m.ctrl.RemoveItem(m.list.Index())
			m.report(err, "removed "+ui.Truncate(it.Description, 40))
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAdding(msg tea.Msg) (Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "enter":
			err := m.ctrl.AddItem(m.input.Value())
			switch {
			case errors.Is(err, app.ErrEmptyDescription):
				m.status, m.statusErr = "Description cannot be empty", true
				return m, nil
			case errors.Is(err, app.ErrInvalidDescription):
				m.status, m.statusErr = "Description is not valid UTF-8", true
				return m, nil
			}
			m.report(err, "added")
			m.closeInput()
			m.sync()
			m.list.Select(0)
			return m, nil
		case "esc":
			m.closeInput()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.adding = false
	m.input.SetValue("")
	m.input.Blur()
	m.resize()
}

// report shows err if set, otherwise ok.
func (m *Model) report(err error, ok string) {
	if err != nil {
		m.status, m.statusErr = err.Error(), true
		return
	}
	m.status, m.statusErr = ok, false
}

// sync rebuilds the list rows after a store change.
func (m *Model) sync() {
	if !m.feed.dirty {
		return
	}
	m.feed.dirty = false
	idx := m.list.Index()
	m.list.SetItems(toListItems(m.feed.items))
	if n := len(m.feed.items); idx >= n && n > 0 {
		m.list.Select(n - 1)
	}
	m.list.Title = ui.Header(m.feed.items)
}

func (m *Model) resize() {
	h := m.height - 5
	if m.adding {
		h -= 3
	}
	if h < 3 {
		h = 3
	}
	m.list.SetSize(m.width-4, h)
	m.input.Width = m.width - 10
}

func (m Model) View() string {
	var b strings.Builder
	if len(m.list.Items()) == 0 {
		t := ui.Current()
		b.WriteString(m.list.Title + "\n\n")
		b.WriteString("  " + t.Muted.Render(ui.EmptyText) + "\n\n")
		b.WriteString(t.Muted.Render("a add • q quit"))
	} else {
		b.WriteString(m.list.View())
	}

	if m.adding {
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.Current().BorderColor).
			Padding(0, 1)
		b.WriteString("\n" + box.Render("Add new item (enter to save, esc to cancel)\n"+m.input.View()))
	}

	if m.status != "" {
		style := ui.Current().Muted
		if m.statusErr {
			style = ui.Current().Error
		}
		b.WriteString("\n" + style.Render(m.status))
	}
	return ui.Panel([]string{b.String()})
}

func toListItems(items []model.Item) []list.Item {
	out := make([]list.Item, 0, len(items))
	for _, it := range items {
		out = append(out, listItem{it})
	}
	return out
}
