package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/scx/internal/formatter"
	"github.com/desertthunder/scx/internal/models"
)

// playlistItem and trackItem adapt the models to [list.Item].
type (
	playlistItem struct{ pl models.Playlist }
	trackItem    struct{ t models.Track }
)

func (i playlistItem) FilterValue() string { return i.pl.Name }
func (i playlistItem) Title() string       { return i.pl.Name }
func (i playlistItem) Description() string {
	return joinNonEmpty(strconv.Itoa(i.pl.TrackCount)+" tracks", formatter.Visibility(i.pl.Public), i.pl.Description)
}

func (i trackItem) FilterValue() string { return i.t.Title + " " + i.t.Artist }
func (i trackItem) Title() string       { return i.t.Title }
func (i trackItem) Description() string {
	return joinNonEmpty(i.t.Artist, formatter.FormatDuration(i.t.Duration), i.t.Album)
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " • ")
}

func playlistItems(playlists []models.Playlist) []list.Item {
	items := make([]list.Item, 0, len(playlists))
	for _, pl := range playlists {
		items = append(items, playlistItem{pl})
	}
	return items
}

func trackItems(tracks []models.Track) []list.Item {
	items := make([]list.Item, 0, len(tracks))
	for _, t := range tracks {
		items = append(items, trackItem{t})
	}
	return items
}
