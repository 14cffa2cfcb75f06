// Package ui implements an interactive SoundCloud playlist browser using bubbletea's Elm architecture.
//
// Views:
//  1. [PlaylistListView] : Browse the authenticated user's playlists
//  2. [TrackListView] : Browse a playlist's tracks
//  3. [TrackView] : Inspect a single track
//  4. [ExportView] : Pick an export format
//  5. [ResultView] : Show the files written by the export
//
// The [Model] receives results of background commands through the [Msg] union type.
// Keyboard navigation uses vim-style bindings with contextual help from charmbracelet/bubbles/help.
package ui
