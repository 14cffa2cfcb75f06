// package formatter renders playlist exports (CSV, Markdown, plain text) and API responses
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/desertthunder/scx/internal/models"
	"github.com/desertthunder/scx/internal/shared"
)

// Format names accepted by [Write].
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "md"
	FormatText     = "txt"
)

// ParseFormat resolves a format name or alias to one of the Format constants.
// An empty name is JSON.
func ParseFormat(name string) (string, error) {
	switch strings.ToLower(name) {
	case FormatJSON, "":
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatMarkdown, "markdown":
		return FormatMarkdown, nil
	case FormatText, "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, name)
	}
}

var csvHeaders = []string{"ID", "Title", "Artist", "Album", "Genre", "Duration", "ISRC", "URL"}

// FormatDuration renders seconds as m:ss, or h:mm:ss from one hour up.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Visibility renders a playlist's sharing setting.
func Visibility(public bool) string {
	if public {
		return "Public"
	}
	return "Private"
}

// ExportToCSV converts a PlaylistExport to CSV with one row per track.
func ExportToCSV(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range export.Tracks {
		record := []string{
			track.ID,
			track.Title,
			track.Artist,
			track.Album,
			track.Genre,
			strconv.Itoa(track.Duration),
			track.ISRC,
			track.Permalink,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a PlaylistExport to Markdown, with a cover image when imageFilename is set.
// Track titles link to their permalink when one is known.
func ExportToMarkdown(export *models.PlaylistExport, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	title := export.Playlist.Name
	if export.Playlist.Permalink != "" {
		title = fmt.Sprintf("[%s](%s)", title, export.Playlist.Permalink)
	}
	fmt.Fprintf(&buf, "# %s\n\n", title)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	if export.Playlist.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", export.Playlist.Description)
	}

	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(export.Tracks))
	fmt.Fprintf(&buf, "**Visibility**: %s\n\n", Visibility(export.Playlist.Public))

	buf.WriteString("## Tracks\n\n")
	for i, track := range export.Tracks {
		name := track.Title
		if track.Permalink != "" {
			name = fmt.Sprintf("[%s](%s)", track.Title, track.Permalink)
		}
		album := ""
		if track.Album != "" {
			album = fmt.Sprintf(" (%s)", track.Album)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, track.Artist, name, album, FormatDuration(track.Duration))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a PlaylistExport to plain text.
func ExportToText(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", export.Playlist.Name)
	if export.Playlist.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", export.Playlist.Description)
	}
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(export.Tracks))

	for i, track := range export.Tracks {
		fmt.Fprintf(&buf, "%d. %s - %s [%s]\n", i+1, track.Artist, track.Title, FormatDuration(track.Duration))
	}

	return buf.Bytes(), nil
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without tracks)
func ToMetadataJSON(playlist models.Playlist) ([]byte, error) {
	return shared.MarshalJSON(playlist)
}

// DownloadImage fetches url with client (or [http.DefaultClient]) and returns the body.
func DownloadImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty image url", shared.ErrInvalidInput)
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return data, nil
}

// Result lists the files written by [Write].
type Result struct {
	Files      []string
	CoverImage string
}

// Options controls [Write].
type Options struct {
	Format     string
	Path       string       // base path; defaults to the playlist ID
	HTTPClient *http.Client // used for the Markdown cover image
	Warn       func(msg string, kv ...any)
}

// Write renders export in opts.Format and writes it under opts.Path:
//
//	json: {path}.json
//	csv:  {path}_tracks.csv and {path}_metadata.json
//	md:   {path}/README.md, plus {path}/cover.jpg when the playlist has artwork
//	txt:  {path}_tracks.txt
func Write(ctx context.Context, export *models.PlaylistExport, opts Options) (*Result, error) {
	base := opts.Path
	if base == "" {
		base = export.Playlist.ID
	}
	warn := opts.Warn
	if warn == nil {
		warn = func(string, ...any) {}
	}

	format, err := ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatCSV:
		tracks, err := ExportToCSV(export)
		if err != nil {
			return nil, err
		}
		meta, err := ToMetadataJSON(export.Playlist)
		if err != nil {
			return nil, err
		}
		return writeFiles(map[string][]byte{base + "_tracks.csv": tracks, base + "_metadata.json": meta})
	case FormatMarkdown:
		return writeMarkdown(ctx, export, base, opts.HTTPClient, warn)
	case FormatText:
		data, err := ExportToText(export)
		if err != nil {
			return nil, err
		}
		return writeFiles(map[string][]byte{base + "_tracks.txt": data})
	default:
		data, err := shared.MarshalJSON(export)
		if err != nil {
			return nil, err
		}
		return writeFiles(map[string][]byte{base + ".json": data})
	}
}

func writeMarkdown(ctx context.Context, export *models.PlaylistExport, dir string, client *http.Client, warn func(string, ...any)) (*Result, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &Result{}
	var cover string
	if url := export.Playlist.ArtworkURL; url != "" {
		data, err := DownloadImage(ctx, client, url)
		if err == nil {
			path := filepath.Join(dir, "cover.jpg")
			if err = os.WriteFile(path, data, 0644); err == nil {
				cover = "cover.jpg"
				result.CoverImage = path
				result.Files = append(result.Files, path)
			}
		}
		if err != nil {
			warn("failed to save cover image", "error", err)
		}
	}

	md, err := ExportToMarkdown(export, cover)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "README.md")
	if err := os.WriteFile(path, md, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}
	result.Files = append(result.Files, path)
	return result, nil
}

func writeFiles(files map[string][]byte) (*Result, error) {
	result := &Result{}
	for path, data := range files {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		result.Files = append(result.Files, path)
	}
	sort.Strings(result.Files)
	return result, nil
}
