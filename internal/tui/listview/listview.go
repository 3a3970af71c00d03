// Package listview is the browsing list: entries newest first with one
// selected row. It never keeps entries between frames; callers pass the
// current sorted view to Sync and View every time.
package listview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/idilsaglam/lw/internal/model"
	"github.com/idilsaglam/lw/internal/ui"
)

const timeLayout = "2006-01-02 15:04:05"

// Model tracks the selection by index and by id. The id wins when it is
// still present, so removals elsewhere cannot leave it dangling.
type Model struct {
	index  int
	id     string
	count  int
	width  int
	height int
	offset int
}

func New() Model { return Model{width: 80, height: 10} }

func (m *Model) SetSize(width, height int) {
	m.width = max(width, 20)
	m.height = max(height, 1)
}

// Sync re-resolves the selection against the current entries.
func (m *Model) Sync(entries []model.Entry) {
	m.count = len(entries)
	if m.count == 0 {
		m.index, m.id, m.offset = 0, "", 0
		return
	}
	if m.id != "" {
		for i, e := range entries {
			if e.ID == m.id {
				m.index = i
				m.scroll()
				return
			}
		}
	}
	m.index = clamp(m.index, 0, m.count-1)
	m.id = entries[m.index].ID
	m.scroll()
}

// Select points the cursor at id; Sync resolves it to a row.
func (m *Model) Select(id string) { m.id = id }

// MoveSelection moves by delta rows, clamped. No-op when empty.
func (m *Model) MoveSelection(delta int, entries []model.Entry) {
	if len(entries) == 0 {
		return
	}
	m.setIndex(m.index+delta, entries)
}

func (m *Model) SelectFirst(entries []model.Entry) { m.setIndex(0, entries) }

func (m *Model) SelectLast(entries []model.Entry) { m.setIndex(len(entries)-1, entries) }

func (m *Model) setIndex(i int, entries []model.Entry) {
	m.count = len(entries)
	if m.count == 0 {
		return
	}
	m.index = clamp(i, 0, m.count-1)
	m.id = entries[m.index].ID
	m.scroll()
}

// SelectedID is the selected entry, false when the list is empty.
func (m Model) SelectedID() (string, bool) {
	if m.count == 0 || m.id == "" {
		return "", false
	}
	return m.id, true
}

func (m Model) Index() int { return m.index }

func (m *Model) scroll() {
	if m.index < m.offset {
		m.offset = m.index
	}
	if m.index >= m.offset+m.height {
		m.offset = m.index - m.height + 1
	}
	m.offset = clamp(m.offset, 0, max(m.count-m.height, 0))
}

// View renders the visible window of entries.
func (m Model) View(entries []model.Entry) string {
	t := ui.Current()
	if len(entries) == 0 {
		return t.Muted.Render("no entries yet, press o to write one")
	}

	stampW := len(timeLayout)
	contentW := max(m.width-2*(stampW+2)-2, 10)
	header := fmt.Sprintf("  %-*s  %-*s  %s", contentW, "Log", stampW, "Modified", "Created")

	lines := []string{t.Muted.Render(header)}
	end := min(m.offset+m.height, len(entries))
	for i := m.offset; i < end; i++ {
		e := entries[i]
		text := truncate.StringWithTail(e.Title(), uint(contentW), "…")
		row := fmt.Sprintf("%-*s  %s  %s",
			contentW, text,
			e.UpdatedAt.Local().Format(timeLayout),
			e.CreatedAt.Local().Format(timeLayout))
		if i == m.index {
			lines = append(lines, t.Selected.Render(t.Cursor+" "+row))
			continue
		}
		lines = append(lines, "  "+row)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Status is the "n of m" position text.
func (m Model) Status() string {
	if m.count == 0 {
		return "0 entries"
	}
	noun := "entries"
	if m.count == 1 {
		noun = "entry"
	}
	return strings.TrimSpace(fmt.Sprintf("%d/%d %s", m.index+1, m.count, noun))
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
