package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	export   key.Binding
	json     key.Binding
	csv      key.Binding
	markdown key.Binding
	text     key.Binding
	restart  key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		export:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		json:     key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "json")),
		csv:      key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "csv")),
		markdown: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "markdown")),
		text:     key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "text")),
		restart:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.back, k.export},
		{k.json, k.csv, k.markdown, k.text},
		{k.restart, k.quit},
	}
}
