// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/scx/internal/models"
	"github.com/desertthunder/scx/internal/shared"
)

// OriginalSchemeHeader carries the scheme a request was issued with before [RewriteTransport] redirected it.
const OriginalSchemeHeader = "X-Original-Scheme"

// MockService is a test double for [services.Service]
//
// When Exports is set, ExportPlaylist looks playlists up by ID; otherwise it returns Export.
// SearchTrack answers from Tracks, keyed by title.
type MockService struct {
	Playlists []models.Playlist
	Export    *models.PlaylistExport
	Exports   map[string]*models.PlaylistExport
	Tracks    map[string]*models.Track
	Err       error

	mu       sync.Mutex
	Imported []*models.PlaylistExport
}

func (m *MockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	return m.Err
}

func (m *MockService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Playlists, nil
}
func (m *MockService) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, p := range m.Playlists {
		if p.ID == playlistID {
			return &p, nil
		}
	}
	return nil, shared.ErrPlaylistNotFound
}
func (m *MockService) ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Exports == nil {
		return m.Export, nil
	}
	export, ok := m.Exports[playlistID]
	if !ok {
		return nil, shared.ErrPlaylistNotFound
	}
	cp := *export
	cp.Tracks = append([]models.Track(nil), export.Tracks...)
	return &cp, nil
}
func (m *MockService) ImportPlaylist(ctx context.Context, playlist *models.PlaylistExport) (*models.Playlist, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	m.Imported = append(m.Imported, playlist)
	m.mu.Unlock()

	created := playlist.Playlist
	created.TrackCount = len(playlist.Tracks)
	return &created, nil
}
func (m *MockService) SearchTrack(ctx context.Context, title, artist string) (*models.Track, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if t, ok := m.Tracks[title]; ok {
		return t, nil
	}
	return nil, shared.ErrTrackNotFound
}
func (m *MockService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// RewriteTransport sends every request to a test server while keeping the
// original Host header and recording the original scheme in [OriginalSchemeHeader].
type RewriteTransport struct {
	Target *url.URL
}

func (t *RewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set(OriginalSchemeHeader, req.URL.Scheme)
	clone.Host = req.URL.Host
	clone.URL.Scheme = t.Target.Scheme
	clone.URL.Host = t.Target.Host
	return http.DefaultTransport.RoundTrip(clone)
}

// RecordedRequest is a snapshot of a request seen by [Recorder].
type RecordedRequest struct {
	Method string
	Scheme string
	Host   string
	Path   string
	Query  url.Values
	Form   url.Values
	Header http.Header
}

// Recorder is an http.Handler that records requests and delegates to Handler.
type Recorder struct {
	Handler http.HandlerFunc

	mu       sync.Mutex
	requests []RecordedRequest
}

func (r *Recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var form url.Values
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		form, _ = url.ParseQuery(string(data))
	}

	r.mu.Lock()
	r.requests = append(r.requests, RecordedRequest{
		Method: req.Method,
		Scheme: req.Header.Get(OriginalSchemeHeader),
		Host:   req.Host,
		Path:   req.URL.Path,
		Query:  req.URL.Query(),
		Form:   form,
		Header: req.Header.Clone(),
	})
	r.mu.Unlock()

	if r.Handler != nil {
		r.Handler(w, req)
	}
}

// Requests returns the requests recorded so far.
func (r *Recorder) Requests() []RecordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RecordedRequest(nil), r.requests...)
}

// NewAPIServer starts a test server backed by rec and returns an [http.Client] whose
// requests, whatever their host, land on it.
func NewAPIServer(t *testing.T, rec *Recorder) *http.Client {
	t.Helper()
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)

	target, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("failed to parse test server url: %v", err)
	}
	return &http.Client{Transport: &RewriteTransport{Target: target}}
}

// WriteJSON writes body with a JSON content type and the given status.
func WriteJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
