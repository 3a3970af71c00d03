// Package tui is the interaction controller: it routes keys to the list or
// the popup editor and commits editor results into the entry store.
package tui

import (
	"errors"
	"iter"
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/idilsaglam/lw/internal/model"
	"github.com/idilsaglam/lw/internal/store/jsonstore"
	"github.com/idilsaglam/lw/internal/tui/listview"
	"github.com/idilsaglam/lw/internal/tui/popup"
	"github.com/idilsaglam/lw/internal/ui"
)

// Store is what the controller needs from the entry store.
type Store interface {
	Insert(content string) (string, error)
	UpdateContent(id, content string) error
	Remove(id string) error
	Get(id string) (model.Entry, bool)
	Sorted() iter.Seq[model.Entry]
	Save() error
	Dirty() bool
}

type Options struct {
	Editor popup.Options
	Logger *zerolog.Logger // nil disables logging
}

// state is either browsing or editing; only editing carries a session.
type state interface{ isState() }

type browsing struct{}

type editing struct{ editor popup.Editor }

func (browsing) isState() {}
func (editing) isState()  {}

type Model struct {
	store Store
	opts  Options
	log   zerolog.Logger

	state state
	list  listview.Model
	help  help.Model

	width, height int
	status        string // last informational message
	err           string // last failure, shown until the next action
	quitArmed     bool   // quit pressed once while unsaved changes exist
}

func New(s Store, opts Options) Model {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("component", "tui").Logger()
	}
	m := Model{
		store:  s,
		opts:   opts,
		log:    log,
		state:  browsing{},
		list:   listview.New(),
		help:   help.New(),
		width:  80,
		height: 24,
	}
	m.list.SetSize(m.width, m.listHeight())
	m.list.Sync(m.entries())
	return m
}

// Run starts the event loop on the alternate screen.
func Run(s Store, opts Options) error {
	_, err := tea.NewProgram(New(s, opts), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd { return nil }

// Editing reports whether the popup editor is open.
func (m Model) Editing() bool {
	_, ok := m.state.(editing)
	return ok
}

// SelectedID is the list selection.
func (m Model) SelectedID() (string, bool) { return m.list.SelectedID() }

// Err is the failure currently shown in the status bar.
func (m Model) Err() string { return m.err }

func (m Model) entries() []model.Entry {
	return slices.Collect(m.store.Sorted())
}

func (m Model) listHeight() int {
	// title, header row, status, help and the frame
	return max(m.height-7, 1)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = ws.Width, ws.Height
		m.list.SetSize(m.width-4, m.listHeight())
		m.help.Width = m.width - 4
		m.list.Sync(m.entries())
		if st, ok := m.state.(editing); ok {
			st.editor.SetSize(m.width, m.height)
			m.state = st
		}
		return m, nil
	}

	switch st := m.state.(type) {
	case editing:
		return m.updateEditing(st, msg)
	default:
		km, ok := msg.(tea.KeyMsg)
		if !ok {
			return m, nil
		}
		return m.updateBrowsing(km)
	}
}

func (m Model) updateEditing(st editing, msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		st.editor, cmd = st.editor.Update(msg)
		m.state = st
		return m, cmd
	}

	ed, out, cmd := st.editor.HandleKey(km)
	switch out.Kind {
	case popup.Continue:
		m.state = editing{editor: ed}
		return m, cmd
	case popup.Cancel:
		m.state = browsing{}
		m.status = "discarded"
	case popup.Commit:
		m.state = browsing{}
		m.commit(ed, out.Content)
	}
	m.list.Sync(m.entries())
	return m, nil
}

func (m *Model) commit(ed popup.Editor, content string) {
	if ed.Creating() {
		id, err := m.store.Insert(content)
		if id != "" {
			m.list.Select(id)
		}
		m.report(err, "added")
		return
	}
	m.report(m.store.UpdateContent(ed.Target(), content), "saved")
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.entries()
	m.list.Sync(entries)
	if !key.Matches(msg, keys.Quit) {
		m.quitArmed = false
	}

	switch {
	case key.Matches(msg, keys.Quit):
		if m.store.Dirty() && !m.quitArmed {
			m.quitArmed = true
			m.err = "unsaved changes: press s to retry the save, q again to quit anyway"
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, keys.New):
		return m.open(popup.New("", "", m.opts.Editor))

	case key.Matches(msg, keys.Edit):
		id, ok := m.list.SelectedID()
		if !ok {
			return m, nil
		}
		e, found := m.store.Get(id)
		if !found {
			m.report(jsonstore.ErrNotFound, "")
			m.list.Sync(m.entries())
			return m, nil
		}
		return m.open(popup.New(id, e.Content, m.opts.Editor))

	case key.Matches(msg, keys.Delete):
		id, ok := m.list.SelectedID()
		if !ok {
			return m, nil
		}
		m.report(m.store.Remove(id), "deleted")

	case key.Matches(msg, keys.Save):
		if !m.store.Dirty() {
			return m, nil
		}
		m.report(m.store.Save(), "saved")

	case key.Matches(msg, keys.Down):
		m.list.MoveSelection(1, entries)
	case key.Matches(msg, keys.Up):
		m.list.MoveSelection(-1, entries)
	case key.Matches(msg, keys.First):
		m.list.SelectFirst(entries)
	case key.Matches(msg, keys.Last):
		m.list.SelectLast(entries)
	}
	m.list.Sync(m.entries())
	return m, nil
}

func (m Model) open(ed popup.Editor) (tea.Model, tea.Cmd) {
	ed.SetSize(m.width, m.height)
	m.state = editing{editor: ed}
	m.status, m.err = "", ""
	return m, ed.Init()
}

// report turns a store result into status text. NotFound is recovered
// here as a no-op; the following Sync re-clamps the selection.
func (m *Model) report(err error, done string) {
	switch {
	case err == nil:
		m.status, m.err = done, ""
	case errors.Is(err, jsonstore.ErrNotFound):
		m.log.Warn().Err(err).Msg("stale selection")
		m.status, m.err = "", ""
	case errors.Is(err, jsonstore.ErrIO):
		m.log.Error().Err(err).Msg("save failed")
		m.status = ""
		m.err = err.Error() + " (kept in memory, press s to retry)"
	default:
		m.log.Error().Err(err).Msg("store")
		m.status, m.err = "", err.Error()
	}
}

func (m Model) View() string {
	t := ui.Current()
	inner := max(m.width-4, 20)

	if st, ok := m.state.(editing); ok {
		return st.editor.View()
	}

	// Re-derive the order every frame; the list never caches it.
	entries := m.entries()
	list := m.list
	list.Sync(entries)

	title := lipgloss.PlaceHorizontal(inner, lipgloss.Center, t.Title.Render("Log Your Work"))
	status := t.Muted.Render(list.Status())
	if m.status != "" {
		status += "  " + t.Success.Render(t.SymOK+" "+m.status)
	}
	if m.err != "" {
		status = t.Error.Render(t.SymFail + " " + m.err)
	}
	return ui.Panel([]string{
		title,
		list.View(entries),
		"",
		status,
		m.help.View(keys),
	})
}
