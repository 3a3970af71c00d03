// Package popup is the modal editor for one entry's content. The buffer is
// a private copy; nothing reaches the store until the caller sees Commit.
package popup

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/lw/internal/ui"
)

type Kind int

const (
	Continue Kind = iota
	Commit
	Cancel
)

func (k Kind) String() string {
	switch k {
	case Commit:
		return "commit"
	case Cancel:
		return "cancel"
	default:
		return "continue"
	}
}

// Outcome is the result of one key. Content is set only for Commit.
type Outcome struct {
	Kind    Kind
	Content string
}

// Options is the editor policy.
type Options struct {
	// AllowEmpty decides whether a blank buffer may be committed.
	AllowEmpty bool
}

var (
	commitKey  = key.NewBinding(key.WithKeys("enter", "ctrl+o"), key.WithHelp("enter", "save"))
	cancelKey  = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))
	newlineKey = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"), key.WithHelp("alt+enter", "newline"))
)

// Editor is an open Editor Session.
type Editor struct {
	target string // entry id; empty in create mode
	opts   Options
	ta     textarea.Model
	err    string

	width, height int // screen area the popup is centered in
	boxWidth      int
}

// New opens a session on initial. An empty target means create mode.
func New(target, initial string, opts Options) Editor {
	ta := textarea.New()
	ta.Placeholder = "What did you work on?"
	ta.CharLimit = 0
	ta.MaxHeight = 0 // no line limit
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.KeyMap.InsertNewline = newlineKey
	ta.SetValue(initial)
	ta.Focus()
	e := Editor{target: target, opts: opts, ta: ta}
	e.SetSize(80, 24)
	return e
}

// SetSize fits the popup to a width x height screen. The textarea wraps
// and moves its cursor by this size, so it must match what View draws.
func (e *Editor) SetSize(width, height int) {
	e.width, e.height = width, height
	e.boxWidth = width * 3 / 5
	if e.boxWidth < 30 {
		e.boxWidth = min(30, width)
	}
	e.ta.SetWidth(max(e.boxWidth-4, 1))
	e.ta.SetHeight(max(height/4, 3))
}

// Target is the edited entry id, or "" when creating.
func (e Editor) Target() string { return e.target }

func (e Editor) Creating() bool { return e.target == "" }

// Value is the live buffer.
func (e Editor) Value() string { return e.ta.Value() }

func (e Editor) Init() tea.Cmd { return textarea.Blink }

// HandleKey applies one key to the buffer.
func (e Editor) HandleKey(msg tea.KeyMsg) (Editor, Outcome, tea.Cmd) {
	switch {
	case key.Matches(msg, cancelKey):
		e.ta.Blur()
		return e, Outcome{Kind: Cancel}, nil
	case key.Matches(msg, commitKey):
		content := e.ta.Value()
		if !e.opts.AllowEmpty && strings.TrimSpace(content) == "" {
			e.err = "entry cannot be empty"
			return e, Outcome{Kind: Continue}, nil
		}
		e.ta.Blur()
		return e, Outcome{Kind: Commit, Content: content}, nil
	}
	e.err = ""
	var cmd tea.Cmd
	e.ta, cmd = e.ta.Update(msg)
	return e, Outcome{Kind: Continue}, cmd
}

// Update forwards non-key messages such as cursor blinks.
func (e Editor) Update(msg tea.Msg) (Editor, tea.Cmd) {
	var cmd tea.Cmd
	e.ta, cmd = e.ta.Update(msg)
	return e, cmd
}

// View draws the popup centered in the area given to SetSize.
func (e Editor) View() string {
	t := ui.Current()
	title := "New entry"
	if !e.Creating() {
		title = "Edit entry"
	}
	header := t.Accent.Bold(true).Render(title)
	if e.err != "" {
		header += " " + t.Error.Render(e.err)
	}
	footer := t.Muted.Render("enter save · alt+enter newline · esc cancel")
	box := ui.Box().Width(e.boxWidth).Render(lipgloss.JoinVertical(lipgloss.Left, header, e.ta.View(), footer))
	return lipgloss.Place(e.width, e.height, lipgloss.Center, lipgloss.Center, box)
}
