package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/scx/internal/formatter"
	"github.com/desertthunder/scx/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
	err  error
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlaylistsFetched MsgKind = iota
	MsgTracksFetched
	MsgExportComplete
)

// playlistsFetchedMsg is the constructor for [MsgPlaylistsFetched]
func playlistsFetchedMsg(playlists []models.Playlist, err error) Msg {
	return Msg{kind: MsgPlaylistsFetched, data: playlists, err: err}
}

// tracksFetchedMsg is the constructor for [MsgTracksFetched]
func tracksFetchedMsg(export *models.PlaylistExport, err error) Msg {
	return Msg{kind: MsgTracksFetched, data: export, err: err}
}

// exportCompleteMsg is the constructor for [MsgExportComplete]
func exportCompleteMsg(result *formatter.Result, err error) Msg {
	return Msg{kind: MsgExportComplete, data: result, err: err}
}

func (m Msg) Kind() MsgKind { return m.kind }
func (m Msg) Err() error    { return m.err }

func (m Msg) playlists() []models.Playlist {
	v, _ := m.data.([]models.Playlist)
	return v
}

func (m Msg) export() *models.PlaylistExport {
	v, _ := m.data.(*models.PlaylistExport)
	return v
}

func (m Msg) result() *formatter.Result {
	v, _ := m.data.(*formatter.Result)
	return v
}
