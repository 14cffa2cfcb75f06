// package services defines interface Service for reading and writing playlists through an HTTP API
package services

import (
	"context"

	"github.com/desertthunder/scx/internal/models"
)

// Service defines the playlist and track operations scx performs against a music service.
type Service interface {
	// Authenticate obtains credentials from the given values (refresh_token, username and password,
	// or code and redirect_uri). Returns an error if authentication fails.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// GetPlaylists retrieves the playlists of the authenticated user.
	GetPlaylists(ctx context.Context) ([]models.Playlist, error)

	// GetPlaylist retrieves a specific playlist by ID.
	GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error)

	// ExportPlaylist exports a playlist with all its tracks.
	ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error)

	// ImportPlaylist creates a new playlist populated with the provided tracks.
	ImportPlaylist(ctx context.Context, playlist *models.PlaylistExport) (*models.Playlist, error)

	// SearchTrack searches for a track by title and artist.
	// Returns the best match or an error if no match is found.
	SearchTrack(ctx context.Context, title, artist string) (*models.Track, error)

	// Name returns the name of the service
	Name() string
}
