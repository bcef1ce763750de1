package tui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/tada/internal/app"
	"github.com/idilsaglam/tada/internal/logging"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store/cborstore"
	"github.com/idilsaglam/tada/internal/ui"
)

func TestMain(m *testing.M) {
	ui.DisableColor()
	os.Exit(m.Run())
}

func newModel(t *testing.T, existing ...model.Item) (Model, *app.Controller, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "todo.dat")
	if len(existing) > 0 {
		require.NoError(t, cborstore.New().Save(existing, path))
	}
	ctrl := app.New(app.Options{Path: path, Logger: logging.Discard()})
	require.NoError(t, ctrl.LoadOnStartup())
	m := New(ctrl, "")
	t.Cleanup(m.stop)
	return m, ctrl, path
}

func press(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	down  = tea.KeyMsg{Type: tea.KeyDown}
)

func requirePersisted(t *testing.T, ctrl *app.Controller, path string) {
	t.Helper()
	onDisk, err := cborstore.New().Load(path)
	require.NoError(t, err)
	assert.Equal(t, ctrl.Items(), onDisk)
}

func TestModel_AddPrepends(t *testing.T) {
	m, ctrl, path := newModel(t, model.Item{Description: "A"})

	m, _ = press(t, m, runes("a"), runes("Buy milk"), enter)

	assert.False(t, m.adding)
	assert.Equal(t, []model.Item{{Description: "Buy milk"}, {Description: "A"}}, ctrl.Items())
	assert.Len(t, m.list.Items(), 2)
	assert.Equal(t, 0, m.list.Index())
	assert.Equal(t, "added", m.status)
	requirePersisted(t, ctrl, path)
}

func TestModel_AddBlankIsRefused(t *testing.T) {
	m, ctrl, _ := newModel(t)

	m, _ = press(t, m, runes("a"), runes("   "), enter)

	assert.True(t, m.adding, "input stays open")
	assert.True(t, m.statusErr)
	assert.Empty(t, ctrl.Items())
}

func TestModel_AddEscCancels(t *testing.T) {
	m, ctrl, _ := newModel(t)

	m, _ = press(t, m, runes("a"), runes("never"), esc)

	assert.False(t, m.adding)
	assert.Empty(t, ctrl.Items())
}

func TestModel_QWhileAddingIsText(t *testing.T) {
	m, ctrl, _ := newModel(t)

	m, _ = press(t, m, runes("a"), runes("q"))
	assert.True(t, m.adding)
	assert.Equal(t, "q", m.input.Value())

	_, _ = press(t, m, enter)
	assert.Equal(t, []model.Item{{Description: "q"}}, ctrl.Items())
}

func TestModel_ToggleSelected(t *testing.T) {
	m, ctrl, path := newModel(t, model.Item{Description: "A"}, model.Item{Description: "B"})

	m, _ = press(t, m, down, space)

	assert.Equal(t, []model.Item{{Description: "A"}, {Completed: true, Description: "B"}}, ctrl.Items())
	it, ok := m.list.Items()[1].(listItem)
	require.True(t, ok)
	assert.True(t, it.Completed)
	requirePersisted(t, ctrl, path)
}

func TestModel_RemoveSelected(t *testing.T) {
	m, ctrl, path := newModel(t,
		model.Item{Description: "A"}, model.Item{Description: "B"}, model.Item{Description: "C"})

	m, _ = press(t, m, down, down, runes("d"))

	assert.Equal(t, []model.Item{{Description: "A"}, {Description: "B"}}, ctrl.Items())
	assert.Equal(t, 1, m.list.Index(), "selection clamps to the new last item")
	assert.Equal(t, "removed C", m.status)
	requirePersisted(t, ctrl, path)
}

func TestModel_IntentsOnEmptyListAreNoops(t *testing.T) {
	m, ctrl, _ := newModel(t)

	m, _ = press(t, m, space, runes("d"))

	assert.Empty(t, ctrl.Items())
	assert.Empty(t, m.status)
	assert.Contains(t, m.View(), ui.EmptyText)
}

func TestModel_Quit(t *testing.T) {
	m, _, _ := newModel(t)

	_, cmd := press(t, m, runes("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestModel_SaveErrorShownInStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "todo.dat")
	ctrl := app.New(app.Options{Path: path, Logger: logging.Discard()})
	require.NoError(t, ctrl.LoadOnStartup())
	m := New(ctrl, "")
	t.Cleanup(m.stop)

	m, _ = press(t, m, runes("a"), runes("X"), enter)

	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "write")
	assert.Len(t, ctrl.Items(), 1, "item kept in memory")
	assert.Len(t, m.list.Items(), 1)
}

func TestModel_View(t *testing.T) {
	m, _, _ := newModel(t, model.Item{Description: "A"}, model.Item{Completed: true, Description: "B"})
	m, _ = press(t, m, tea.WindowSizeMsg{Width: 60, Height: 20})

	v := m.View()
	assert.Contains(t, v, "Todos")
	assert.Contains(t, v, "A")
	assert.Contains(t, v, "B")
	assert.Contains(t, v, "Total 2")
}

func TestModel_NoticeShown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.dat")
	ctrl := app.New(app.Options{Path: path, Logger: logging.Discard()})
	m := New(ctrl, "corrupt store")
	t.Cleanup(m.stop)

	assert.Contains(t, m.View(), "corrupt store")
}
