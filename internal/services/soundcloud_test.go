package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/desertthunder/scx/internal/models"
	"github.com/desertthunder/scx/internal/shared"
	"github.com/desertthunder/scx/internal/soundcloud"
	tu "github.com/desertthunder/scx/internal/testing"
)

var _ Service = (*SoundCloudService)(nil)
var _ Service = (*tu.MockService)(nil)

// routes maps "METHOD /path" to a status and JSON body.
type routes map[string]struct {
	status int
	body   string
}

func newTestService(t *testing.T, r routes) (*SoundCloudService, *tu.Recorder) {
	t.Helper()

	rec := &tu.Recorder{Handler: func(w http.ResponseWriter, req *http.Request) {
		route, ok := r[req.Method+" "+req.URL.Path]
		if !ok {
			tu.WriteJSON(w, http.StatusNotFound, `{"errors":[{"error_message":"404 - Not Found"}]}`)
			return
		}
		tu.WriteJSON(w, route.status, route.body)
	}}

	client, err := soundcloud.New(context.Background(), soundcloud.Options{
		ClientID:     soundcloud.String("client"),
		ClientSecret: soundcloud.String("secret"),
		AccessToken:  soundcloud.String("token"),
	}, soundcloud.WithHTTPClient(tu.NewAPIServer(t, rec)))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	return NewSoundCloudService(client, 10), rec
}

const playlistJSON = `{
	"id": 1001,
	"title": "Late Night",
	"description": "slow ones",
	"sharing": "public",
	"permalink_url": "https://soundcloud.com/u/sets/late-night",
	"track_count": 2,
	"tracks": [
		{"id": 1, "title": "Flickermood", "duration": 213000, "genre": "Electronic", "user": {"username": "forss"}},
		{"id": 2, "title": "Crickets", "duration": 61000, "user": {"username": "someone"},
		 "publisher_metadata": {"album_title": "Night", "isrc": "USABC1234567", "artist": "Real Artist"}}
	]
}`

func TestSoundCloudService(t *testing.T) {
	t.Run("Name", func(t *testing.T) {
		svc, _ := newTestService(t, nil)
		if svc.Name() != "SoundCloud" {
			t.Errorf("expected SoundCloud, got %s", svc.Name())
		}
	})

	t.Run("Default page size", func(t *testing.T) {
		if svc := NewSoundCloudService(nil, 0); svc.pageSize != DefaultPageSize {
			t.Errorf("expected %d, got %d", DefaultPageSize, svc.pageSize)
		}
	})

	t.Run("Me", func(t *testing.T) {
		svc, _ := newTestService(t, routes{
			"GET /me": {200, `{"id": 3207, "username": "jwagener", "full_name": "Johannes", "playlist_count": 4}`},
		})

		me, err := svc.Me(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if me.ID != "3207" || me.Username != "jwagener" || me.Playlists != 4 {
			t.Errorf("unexpected user %+v", me)
		}
	})

	t.Run("GetPlaylists", func(t *testing.T) {
		t.Run("bare array", func(t *testing.T) {
			svc, rec := newTestService(t, routes{
				"GET /me/playlists": {200, `[{"id": 1, "title": "A", "sharing": "private"}, {"id": 2, "title": "B"}]`},
			})

			playlists, err := svc.GetPlaylists(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(playlists) != 2 || playlists[0].Name != "A" || playlists[0].Public {
				t.Errorf("unexpected playlists %+v", playlists)
			}
			if got := rec.Requests()[0].Query.Get("limit"); got != "10" {
				t.Errorf("expected limit=10, got %q", got)
			}
			if got := rec.Requests()[0].Query.Get("oauth_token"); got != "token" {
				t.Errorf("expected oauth_token=token, got %q", got)
			}
		})

		t.Run("collection page", func(t *testing.T) {
			svc, _ := newTestService(t, routes{
				"GET /me/playlists": {200, `{"collection": [{"id": 1, "title": "A"}], "next_href": null}`},
			})

			playlists, err := svc.GetPlaylists(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(playlists) != 1 || playlists[0].ID != "1" {
				t.Errorf("unexpected playlists %+v", playlists)
			}
		})

		t.Run("unexpected shape", func(t *testing.T) {
			svc, _ := newTestService(t, routes{"GET /me/playlists": {200, `{"id": 1}`}})

			if _, err := svc.GetPlaylists(context.Background()); !errors.Is(err, shared.ErrUnexpectedResponse) {
				t.Errorf("expected ErrUnexpectedResponse, got %v", err)
			}
		})

		t.Run("api error", func(t *testing.T) {
			svc, _ := newTestService(t, routes{"GET /me/playlists": {500, `{"error": "boom"}`}})

			_, err := svc.GetPlaylists(context.Background())
			if err == nil || err.Error() != "500 Internal Server Error: boom" {
				t.Errorf("expected response error, got %v", err)
			}
		})
	})

	t.Run("GetPlaylist", func(t *testing.T) {
		svc, rec := newTestService(t, routes{"GET /playlists/1001": {200, playlistJSON}})

		p, err := svc.GetPlaylist(context.Background(), "1001")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p.Name != "Late Night" || p.TrackCount != 2 || !p.Public {
			t.Errorf("unexpected playlist %+v", p)
		}
		if got := rec.Requests()[0].Query.Get("representation"); got != "compact" {
			t.Errorf("expected compact representation, got %q", got)
		}
	})

	t.Run("GetPlaylist not found", func(t *testing.T) {
		svc, _ := newTestService(t, nil)

		if _, err := svc.GetPlaylist(context.Background(), "404"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("GetPlaylist requires an id", func(t *testing.T) {
		svc, _ := newTestService(t, nil)

		if _, err := svc.GetPlaylist(context.Background(), ""); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("ExportPlaylist", func(t *testing.T) {
		svc, _ := newTestService(t, routes{"GET /playlists/1001": {200, playlistJSON}})

		export, err := svc.ExportPlaylist(context.Background(), "1001")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(export.Tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(export.Tracks))
		}

		first := export.Tracks[0]
		if first.ID != "1" || first.Artist != "forss" || first.Duration != 213 || first.Genre != "Electronic" {
			t.Errorf("unexpected first track %+v", first)
		}

		second := export.Tracks[1]
		if second.Artist != "Real Artist" || second.Album != "Night" || second.ISRC != "USABC1234567" {
			t.Errorf("expected publisher metadata to be applied, got %+v", second)
		}
	})

	t.Run("SearchTrack", func(t *testing.T) {
		results := `[
			{"id": 7, "title": "Flickermood (remix)", "user": {"username": "other"}},
			{"id": 8, "title": "Flickermood", "user": {"username": "Forss"}}
		]`

		t.Run("prefers exact match", func(t *testing.T) {
			svc, rec := newTestService(t, routes{"GET /tracks": {200, results}})

			track, err := svc.SearchTrack(context.Background(), "flickermood", "forss")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if track.ID != "8" {
				t.Errorf("expected exact match 8, got %s", track.ID)
			}
			if got := rec.Requests()[0].Query.Get("q"); got != "flickermood forss" {
				t.Errorf("expected q=flickermood forss, got %q", got)
			}
		})

		t.Run("falls back to first result", func(t *testing.T) {
			svc, _ := newTestService(t, routes{"GET /tracks": {200, results}})

			track, err := svc.SearchTrack(context.Background(), "flickermood", "")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if track.ID != "7" {
				t.Errorf("expected first result 7, got %s", track.ID)
			}
		})

		t.Run("no results", func(t *testing.T) {
			svc, _ := newTestService(t, routes{"GET /tracks": {200, `[]`}})

			if _, err := svc.SearchTrack(context.Background(), "nothing", ""); !errors.Is(err, shared.ErrTrackNotFound) {
				t.Errorf("expected ErrTrackNotFound, got %v", err)
			}
		})

		t.Run("empty query", func(t *testing.T) {
			svc, _ := newTestService(t, nil)

			if _, err := svc.SearchTrack(context.Background(), " ", ""); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	})

	t.Run("ImportPlaylist", func(t *testing.T) {
		svc, rec := newTestService(t, routes{
			"GET /tracks":     {200, `[{"id": 42, "title": "Found", "user": {"username": "x"}}]`},
			"POST /playlists": {201, `{"id": 555, "title": "Imported", "sharing": "private"}`},
		})

		created, err := svc.ImportPlaylist(context.Background(), &models.PlaylistExport{
			Playlist: models.Playlist{Name: "Imported"},
			Tracks:   []models.Track{{ID: "1"}, {Title: "Found", Artist: "x"}},
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if created.ID != "555" || created.Public {
			t.Errorf("unexpected playlist %+v", created)
		}

		reqs := rec.Requests()
		post := reqs[len(reqs)-1]
		if post.Method != http.MethodPost {
			t.Fatalf("expected last request to be POST, got %s", post.Method)
		}
		if got := post.Form.Get("playlist[title]"); got != "Imported" {
			t.Errorf("expected title Imported, got %q", got)
		}
		if got := post.Form.Get("playlist[sharing]"); got != "private" {
			t.Errorf("expected private sharing, got %q", got)
		}
		ids := post.Form["playlist[tracks][][id]"]
		if len(ids) != 2 || ids[0] != "1" || ids[1] != "42" {
			t.Errorf("unexpected track ids %v", ids)
		}
	})

	t.Run("ImportPlaylist requires a name", func(t *testing.T) {
		svc, _ := newTestService(t, nil)

		if _, err := svc.ImportPlaylist(context.Background(), &models.PlaylistExport{}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Authenticate", func(t *testing.T) {
		svc, rec := newTestService(t, routes{
			"POST /oauth2/token": {200, `{"access_token": "new", "refresh_token": "ref"}`},
		})

		if err := svc.Authenticate(context.Background(), map[string]string{"refresh_token": "old"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if svc.Client().AccessToken() != "new" {
			t.Errorf("expected access token new, got %s", svc.Client().AccessToken())
		}
		if got := rec.Requests()[0].Query.Get("grant_type"); got != "refresh_token" {
			t.Errorf("expected refresh_token grant, got %q", got)
		}
	})

	t.Run("Authenticate with password replaces a stored refresh token", func(t *testing.T) {
		svc, rec := newTestService(t, routes{
			"POST /oauth2/token": {200, `{"access_token": "new", "refresh_token": "ref"}`},
		})
		if err := svc.Authenticate(context.Background(), map[string]string{"refresh_token": "old"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if svc.Client().RefreshToken() != "ref" {
			t.Fatalf("expected stored refresh token ref, got %q", svc.Client().RefreshToken())
		}

		creds := map[string]string{"username": "forss", "password": "secret"}
		if err := svc.Authenticate(context.Background(), creds); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		q := rec.Requests()[1].Query
		if q.Get("grant_type") != soundcloud.GrantPassword || q.Get("username") != "forss" || q.Get("password") != "secret" {
			t.Errorf("expected password grant, got %v", q)
		}
		if q.Has("refresh_token") {
			t.Errorf("expected no refresh_token param, got %q", q.Get("refresh_token"))
		}
	})

	t.Run("Authenticate with code replaces a stored refresh token", func(t *testing.T) {
		svc, rec := newTestService(t, routes{
			"POST /oauth2/token": {200, `{"access_token": "new", "refresh_token": "ref"}`},
		})
		if err := svc.Authenticate(context.Background(), map[string]string{"refresh_token": "old"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		creds := map[string]string{"code": "THECODE", "redirect_uri": "http://127.0.0.1:3000/callback"}
		if err := svc.Authenticate(context.Background(), creds); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		q := rec.Requests()[1].Query
		if q.Get("grant_type") != soundcloud.GrantAuthorizationCode || q.Get("code") != "THECODE" {
			t.Errorf("expected authorization_code grant, got %v", q)
		}
	})

	t.Run("Authenticate failure", func(t *testing.T) {
		svc, _ := newTestService(t, routes{
			"POST /oauth2/token": {401, `{"error": "invalid_grant"}`},
		})

		err := svc.Authenticate(context.Background(), map[string]string{"refresh_token": "old"})
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})
}
