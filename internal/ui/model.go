package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/scx/internal/formatter"
	"github.com/desertthunder/scx/internal/models"
	"github.com/desertthunder/scx/internal/services"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	TrackListView
	TrackView
	ExportView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	service      services.Service
	outDir       string
	width        int
	height       int
	loading      bool
	playlistList list.Model
	trackList    list.Model
	selected     *models.PlaylistExport
	track        *models.Track
	result       *formatter.Result
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a TUI model that browses svc and writes exports under outDir.
func NewModel(ctx context.Context, svc services.Service, outDir string) *Model {
	playlists := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	playlists.Title = "SoundCloud Playlists"
	tracks := list.New(nil, list.NewDefaultDelegate(), 0, 0)

	return &Model{
		ctx:          ctx,
		view:         PlaylistListView,
		service:      svc,
		outDir:       outDir,
		loading:      true,
		playlistList: playlists,
		trackList:    tracks,
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init fetches the user's playlists.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// State returns the current view.
func (m *Model) State() ViewState { return m.view }

// Err returns the last error reported by a background command.
func (m *Model) Err() error { return m.err }

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		m.trackList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case TrackView:
			return m.handleTrackKeys(msg)
		case ExportView:
			return m.handleExportKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	m.loading = false
	switch msg.Kind() {
	case MsgPlaylistsFetched:
		if msg.Err() != nil {
			m.err = msg.Err()
			return m, nil
		}
		m.err = nil
		cmd := m.playlistList.SetItems(playlistItems(msg.playlists()))
		return m, cmd

	case MsgTracksFetched:
		if msg.Err() != nil {
			m.err = msg.Err()
			m.view = PlaylistListView
			return m, nil
		}
		m.err = nil
		m.selected = msg.export()
		m.trackList.Title = fmt.Sprintf("Tracks in '%s'", m.selected.Playlist.Name)
		cmd := m.trackList.SetItems(trackItems(m.selected.Tracks))
		m.trackList.ResetSelected()
		m.view = TrackListView
		return m, cmd

	case MsgExportComplete:
		m.result = msg.result()
		m.err = msg.Err()
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" +
			m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})
	}
	if m.loading {
		return styles.help.Render("Loading...")
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case TrackListView:
		return m.renderTrackList()
	case TrackView:
		return m.renderTrack()
	case ExportView:
		return m.renderExport()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.playlistList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case m.err != nil && key.Matches(msg, m.keys.restart):
		m.err = nil
		m.loading = true
		return m, m.fetchPlaylists()
	case key.Matches(msg, m.keys.enter):
		if pl, ok := m.playlistList.SelectedItem().(playlistItem); ok {
			m.loading = true
			return m, m.fetchTracks(pl.pl.ID)
		}
		return m, nil
	}
	return m.updateLists(msg)
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.trackList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = PlaylistListView
		return m, nil
	case key.Matches(msg, m.keys.export):
		m.view = ExportView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if t, ok := m.trackList.SelectedItem().(trackItem); ok {
			track := t.t
			m.track = &track
			m.view = TrackView
		}
		return m, nil
	}
	return m.updateLists(msg)
}

func (m *Model) handleTrackKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.enter):
		m.view = TrackListView
		m.track = nil
	}
	return m, nil
}

func (m *Model) handleExportKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var format string
	switch {
	case key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.back):
		m.view = TrackListView
		return m, nil
	case key.Matches(msg, m.keys.json):
		format = formatter.FormatJSON
	case key.Matches(msg, m.keys.csv):
		format = formatter.FormatCSV
	case key.Matches(msg, m.keys.markdown):
		format = formatter.FormatMarkdown
	case key.Matches(msg, m.keys.text):
		format = formatter.FormatText
	default:
		return m, nil
	}
	m.loading = true
	return m, m.exportPlaylist(format)
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = PlaylistListView
		m.selected = nil
		m.result = nil
		m.err = nil
	case key.Matches(msg, m.keys.back):
		m.view = TrackListView
		m.result = nil
		m.err = nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.service.GetPlaylists(m.ctx)
		return playlistsFetchedMsg(playlists, err)
	}
}

func (m *Model) fetchTracks(playlistID string) tea.Cmd {
	return func() tea.Msg {
		export, err := m.service.ExportPlaylist(m.ctx, playlistID)
		return tracksFetchedMsg(export, err)
	}
}

func (m *Model) exportPlaylist(format string) tea.Cmd {
	export := m.selected
	path := filepath.Join(m.outDir, export.Playlist.ID)
	return func() tea.Msg {
		result, err := formatter.Write(m.ctx, export, formatter.Options{Format: format, Path: path})
		return exportCompleteMsg(result, err)
	}
}

func (m *Model) renderPlaylistList() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderTrackList() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.export, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), helpView)
}

func (m *Model) renderTrack() string {
	t := m.track
	if t == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(t.Title))
	b.WriteString("\n")
	rows := [][2]string{
		{"Artist", t.Artist},
		{"Album", t.Album},
		{"Genre", t.Genre},
		{"Duration", formatter.FormatDuration(t.Duration)},
		{"ISRC", t.ISRC},
		{"URL", t.Permalink},
	}
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		fmt.Fprintf(&b, "%-9s %s\n", row[0]+":", row[1])
	}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit}))
	return b.String()
}

func (m *Model) renderExport() string {
	title := styles.title.Render(fmt.Sprintf("Export '%s'", m.selected.Playlist.Name))
	info := fmt.Sprintf("Tracks: %d\nDirectory: %s\n", len(m.selected.Tracks), m.outDir)
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.json, m.keys.csv, m.keys.markdown, m.keys.text, m.keys.back})
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.restart, m.keys.quit})

	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Export failed: %v", m.err)) + "\n\n" + helpView
	}
	if m.result == nil {
		return styles.warn.Render("No result available") + "\n\n" + helpView
	}

	var b strings.Builder
	b.WriteString(styles.ok.Render("✓ Export Complete!"))
	b.WriteString("\n\n")
	for _, f := range m.result.Files {
		fmt.Fprintf(&b, "  • %s\n", f)
	}
	b.WriteString("\n")
	b.WriteString(helpView)
	return b.String()
}
