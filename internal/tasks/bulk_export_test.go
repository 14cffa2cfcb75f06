package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/scx/internal/models"
	"github.com/desertthunder/scx/internal/shared"
	tu "github.com/desertthunder/scx/internal/testing"
)

func bulkService() *tu.MockService {
	exports := map[string]*models.PlaylistExport{}
	for _, id := range []string{"1", "2", "3"} {
		exports[id] = &models.PlaylistExport{
			Playlist: models.Playlist{ID: id, Name: "Playlist " + id},
			Tracks:   []models.Track{{ID: "t" + id, Title: "Track " + id, Artist: "Forss"}},
		}
	}
	return &tu.MockService{Exports: exports}
}

func TestBulkExport(t *testing.T) {
	t.Run("exports every playlist and writes a manifest", func(t *testing.T) {
		dir := t.TempDir()
		progress := make(chan ProgressUpdate, 10)

		result, err := NewEngine(bulkService()).BulkExport(context.Background(), progress, []string{"3", "1", "2"}, BulkExportOpts{
			Format:     "csv",
			OutputDir:  dir,
			NumWorkers: 2,
			RateLimit:  100,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.TotalPlaylists != 3 || result.SuccessfulExports != 3 || result.FailedExports != 0 {
			t.Errorf("unexpected counts %+v", result)
		}
		for _, id := range []string{"1", "2", "3"} {
			tu.AssertFileExists(t, filepath.Join(dir, id+"_tracks.csv"))
			tu.AssertFileExists(t, filepath.Join(dir, id+"_metadata.json"))
		}
		for i, want := range []string{"3", "1", "2"} {
			if result.Results[i].PlaylistID != want {
				t.Errorf("expected result %d to be %s, got %s", i, want, result.Results[i].PlaylistID)
			}
		}

		if result.ManifestPath != filepath.Join(dir, ManifestFile) {
			t.Errorf("unexpected manifest path %q", result.ManifestPath)
		}
		data, err := os.ReadFile(result.ManifestPath)
		if err != nil {
			t.Fatalf("failed to read manifest: %v", err)
		}
		var manifest BulkExportResult
		if err := json.Unmarshal(data, &manifest); err != nil {
			t.Fatalf("failed to decode manifest: %v", err)
		}
		if manifest.Format != "csv" || len(manifest.Results) != 3 || len(manifest.Results[0].Files) != 2 {
			t.Errorf("unexpected manifest %+v", manifest)
		}

		if n := len(drain(progress)); n != 3 {
			t.Errorf("expected 3 progress updates, got %d", n)
		}
	})

	t.Run("records failures without stopping", func(t *testing.T) {
		dir := t.TempDir()

		result, err := NewEngine(bulkService()).BulkExport(context.Background(), nil, []string{"1", "missing"}, BulkExportOpts{
			OutputDir: dir,
			RateLimit: 100,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.SuccessfulExports != 1 || result.FailedExports != 1 {
			t.Errorf("unexpected counts %+v", result)
		}
		failed := result.Results[1]
		if failed.Success || !errors.Is(failed.Error, shared.ErrPlaylistNotFound) || failed.ErrorMessage == "" {
			t.Errorf("unexpected failure result %+v", failed)
		}
		if failed.PlaylistName != "Unknown (missing)" {
			t.Errorf("unexpected name %q", failed.PlaylistName)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "1.json"))
	})

	t.Run("rejects unknown formats before exporting", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "out")

		_, err := NewEngine(bulkService()).BulkExport(context.Background(), nil, []string{"1"}, BulkExportOpts{Format: "xml", OutputDir: dir})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Error("expected no output directory to be created")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewEngine(bulkService()).BulkExport(ctx, nil, []string{"1", "2"}, BulkExportOpts{OutputDir: t.TempDir()})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("nil service", func(t *testing.T) {
		if _, err := NewEngine(nil).BulkExport(context.Background(), nil, nil, BulkExportOpts{}); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}
