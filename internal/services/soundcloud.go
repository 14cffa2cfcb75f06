// SoundCloud implementation of [Service]
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/scx/internal/models"
	"github.com/desertthunder/scx/internal/shared"
	"github.com/desertthunder/scx/internal/soundcloud"
)

// DefaultPageSize is the number of items requested from list endpoints.
const DefaultPageSize = 50

// SoundCloudService implements [Service] on top of a [soundcloud.Client].
type SoundCloudService struct {
	client   *soundcloud.Client
	pageSize int
}

// NewSoundCloudService creates a service backed by client. A non-positive pageSize uses [DefaultPageSize].
func NewSoundCloudService(client *soundcloud.Client, pageSize int) *SoundCloudService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &SoundCloudService{client: client, pageSize: pageSize}
}

// Name returns the service name
func (s *SoundCloudService) Name() string {
	return "SoundCloud"
}

// Client returns the underlying API client.
func (s *SoundCloudService) Client() *soundcloud.Client {
	return s.client
}

// Authenticate exchanges the given credentials for an access token.
//
// Recognized keys: client_secret, refresh_token, username, password, code, redirect_uri.
func (s *SoundCloudService) Authenticate(ctx context.Context, credentials map[string]string) error {
	var opts soundcloud.Options
	fields := map[string]**string{
		"client_secret": &opts.ClientSecret,
		"refresh_token": &opts.RefreshToken,
		"username":      &opts.Username,
		"password":      &opts.Password,
		"code":          &opts.Code,
		"redirect_uri":  &opts.RedirectURI,
	}
	for key, dst := range fields {
		if v, ok := credentials[key]; ok && v != "" {
			*dst = soundcloud.String(v)
		}
	}

	// A new password or code grant replaces whatever token the client restored.
	if opts.RefreshToken == nil {
		switch {
		case opts.Username != nil && opts.Password != nil:
			opts.RefreshToken = soundcloud.String("")
		case opts.Code != nil:
			opts.RefreshToken = soundcloud.String("")
			opts.Username = soundcloud.String("")
			opts.Password = soundcloud.String("")
		}
	}

	if _, err := s.client.ExchangeToken(ctx, opts); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}
	return nil
}

// Me returns the authenticated user.
func (s *SoundCloudService) Me(ctx context.Context) (*models.User, error) {
	resp, err := s.client.Get(ctx, "/me", nil)
	if err != nil {
		return nil, err
	}

	h, ok := resp.(*soundcloud.HashResponse)
	if !ok {
		return nil, fmt.Errorf("%w: /me returned %T", shared.ErrUnexpectedResponse, resp)
	}

	return &models.User{
		ID:        h.String("id"),
		Username:  h.String("username"),
		FullName:  h.String("full_name"),
		Permalink: h.String("permalink_url"),
		Playlists: int(h.Int("playlist_count")),
		Tracks:    int(h.Int("track_count")),
	}, nil
}

// GetPlaylists retrieves the first page of the authenticated user's playlists.
func (s *SoundCloudService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	params := url.Values{"limit": {strconv.Itoa(s.pageSize)}}
	resp, err := s.client.Get(ctx, "/me/playlists", params)
	if err != nil {
		return nil, err
	}

	items, err := collection(resp)
	if err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, 0, len(items))
	for _, h := range items {
		playlists = append(playlists, toPlaylist(h))
	}
	return playlists, nil
}

// GetPlaylist retrieves a playlist by ID without its tracks.
func (s *SoundCloudService) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	h, err := s.playlist(ctx, playlistID, false)
	if err != nil {
		return nil, err
	}
	p := toPlaylist(h)
	return &p, nil
}

// ExportPlaylist retrieves a playlist with its tracks.
func (s *SoundCloudService) ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	h, err := s.playlist(ctx, playlistID, true)
	if err != nil {
		return nil, err
	}

	export := &models.PlaylistExport{Playlist: toPlaylist(h)}
	for _, th := range h.Array("tracks").Hashes() {
		export.Tracks = append(export.Tracks, toTrack(th))
	}
	return export, nil
}

// ImportPlaylist creates a playlist named after playlist.Playlist.Name.
//
// Tracks without an ID are resolved with [SoundCloudService.SearchTrack]; tracks that
// cannot be found are skipped.
func (s *SoundCloudService) ImportPlaylist(ctx context.Context, playlist *models.PlaylistExport) (*models.Playlist, error) {
	if playlist == nil || strings.TrimSpace(playlist.Playlist.Name) == "" {
		return nil, fmt.Errorf("%w: playlist name is required", shared.ErrInvalidInput)
	}

	sharing := "private"
	if playlist.Playlist.Public {
		sharing = "public"
	}
	params := url.Values{
		"playlist[title]":   {playlist.Playlist.Name},
		"playlist[sharing]": {sharing},
	}
	if playlist.Playlist.Description != "" {
		params.Set("playlist[description]", playlist.Playlist.Description)
	}

	for _, track := range playlist.Tracks {
		id := track.ID
		if id == "" {
			found, err := s.SearchTrack(ctx, track.Title, track.Artist)
			if errors.Is(err, shared.ErrTrackNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			id = found.ID
		}
		params.Add("playlist[tracks][][id]", id)
	}

	resp, err := s.client.Post(ctx, "/playlists", params)
	if err != nil {
		return nil, err
	}

	h, ok := resp.(*soundcloud.HashResponse)
	if !ok {
		return nil, fmt.Errorf("%w: /playlists returned %T", shared.ErrUnexpectedResponse, resp)
	}
	created := toPlaylist(h)
	return &created, nil
}

// SearchTrack queries /tracks and prefers an exact normalized title and artist match,
// falling back to the first result.
func (s *SoundCloudService) SearchTrack(ctx context.Context, title, artist string) (*models.Track, error) {
	q := strings.TrimSpace(title + " " + artist)
	if q == "" {
		return nil, fmt.Errorf("%w: title or artist is required", shared.ErrInvalidInput)
	}

	resp, err := s.client.Get(ctx, "/tracks", url.Values{"q": {q}, "limit": {strconv.Itoa(s.pageSize)}})
	if err != nil {
		return nil, err
	}

	items, err := collection(resp)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, q)
	}

	want := shared.NormalizeTrackKey(title, artist)
	for _, h := range items {
		track := toTrack(h)
		if shared.NormalizeTrackKey(track.Title, track.Artist) == want {
			return &track, nil
		}
	}

	track := toTrack(items[0])
	return &track, nil
}

func (s *SoundCloudService) playlist(ctx context.Context, playlistID string, withTracks bool) (*soundcloud.HashResponse, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id is required", shared.ErrMissingArgument)
	}

	params := url.Values{}
	if !withTracks {
		params.Set("representation", "compact")
	}

	resp, err := s.client.Get(ctx, "/playlists/"+url.PathEscape(playlistID), params)
	var respErr *soundcloud.ResponseError
	if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}
	if err != nil {
		return nil, err
	}

	h, ok := resp.(*soundcloud.HashResponse)
	if !ok {
		return nil, fmt.Errorf("%w: /playlists/%s returned %T", shared.ErrUnexpectedResponse, playlistID, resp)
	}
	return h, nil
}

// collection unwraps a list endpoint, which answers with either a bare array or
// an object whose "collection" key holds the page.
func collection(resp soundcloud.Response) ([]*soundcloud.HashResponse, error) {
	switch r := resp.(type) {
	case *soundcloud.ArrayResponse:
		return r.Hashes(), nil
	case *soundcloud.HashResponse:
		if r.Has("collection") {
			return r.Array("collection").Hashes(), nil
		}
	}
	return nil, fmt.Errorf("%w: expected a list, got %T", shared.ErrUnexpectedResponse, resp)
}

func toPlaylist(h *soundcloud.HashResponse) models.Playlist {
	p := models.Playlist{
		ID:          h.String("id"),
		Name:        h.String("title"),
		Description: h.String("description"),
		TrackCount:  int(h.Int("track_count")),
		Public:      h.String("sharing") != "private",
		Permalink:   h.String("permalink_url"),
		ArtworkURL:  h.String("artwork_url"),
	}
	if p.TrackCount == 0 {
		p.TrackCount = h.Array("tracks").Len()
	}
	return p
}

func toTrack(h *soundcloud.HashResponse) models.Track {
	t := models.Track{
		ID:        h.String("id"),
		Title:     h.String("title"),
		Artist:    h.Hash("user").String("username"),
		Duration:  int(h.Int("duration") / 1000),
		Genre:     h.String("genre"),
		ISRC:      h.String("isrc"),
		Permalink: h.String("permalink_url"),
	}
	if meta := h.Hash("publisher_metadata"); meta != nil {
		t.Album = meta.String("album_title")
		if t.ISRC == "" {
			t.ISRC = meta.String("isrc")
		}
		if artist := meta.String("artist"); artist != "" {
			t.Artist = artist
		}
	}
	return t
}
