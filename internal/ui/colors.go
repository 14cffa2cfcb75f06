package ui

import "github.com/charmbracelet/lipgloss"

const (
	orange = lipgloss.Color("#FF5500")
	green  = lipgloss.Color("#04B575")
	red    = lipgloss.Color("#FF0000")
	amber  = lipgloss.Color("#FFA500")
	grey   = lipgloss.Color("#626262")
)

// palette holds the styles every view renders with.
type palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

var styles = palette{
	title: lipgloss.NewStyle().Foreground(orange).Bold(true).MarginBottom(1),
	ok:    lipgloss.NewStyle().Foreground(green).Bold(true),
	err:   lipgloss.NewStyle().Foreground(red).Bold(true),
	warn:  lipgloss.NewStyle().Foreground(amber),
	help:  lipgloss.NewStyle().Foreground(grey).Italic(true),
}
