package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	New, Edit, Delete     key.Binding
	Up, Down, First, Last key.Binding
	Save, Quit            key.Binding
}

var keys = keyMap{
	New:    key.NewBinding(key.WithKeys("o", "n"), key.WithHelp("o", "new")),
	Edit:   key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
	Delete: key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
	Up:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
	Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
	First:  key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first")),
	Last:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last")),
	Save:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "retry save")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.New, k.Edit, k.Delete, k.Down, k.Up, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.New, k.Edit, k.Delete},
		{k.Up, k.Down, k.First, k.Last},
		{k.Save, k.Quit},
	}
}
