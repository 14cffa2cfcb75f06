package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/scx/internal/shared"
	"github.com/desertthunder/scx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// trackProgress prints engine updates until the returned stop func is called.
func (r *Runner) trackProgress() (chan<- tasks.ProgressUpdate, func()) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchSource, tasks.FetchDest:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.SearchTracks:
				r.writePlain("   %s\n", update.Message)
			case tasks.CreatePlaylist:
				r.writePlain("📝 %s\n", update.Message)
			case tasks.ExportPlaylist:
				r.writePlain("%s\n", update.Message)
			}
		}
	}()
	return progressCh, func() {
		close(progressCh)
		<-done
	}
}

func (r *Runner) engine(ctx context.Context) (*tasks.Engine, error) {
	svc, err := r.connectService(ctx)
	if err != nil {
		return nil, err
	}
	return tasks.NewEngine(svc), nil
}

func (r *Runner) writeImportSummary(result *tasks.ImportResult) {
	r.writePlain("\n")
	r.writePlainHeader("Import Complete!")
	r.writePlain("✓ Created playlist %s\n", result.Created.Name)
	r.writePlain("  ID: %s\n", result.Created.ID)
	r.writePlain("  Tracks: %d of %d (%.1f%%)\n", result.SuccessCount, result.TotalTracks, result.MatchPercentage)
	if result.Created.Permalink != "" {
		r.writePlain("  URL: %s\n", result.Created.Permalink)
	}

	if result.FailedCount > 0 {
		r.writePlain("\nFailed to match %d tracks:\n", result.FailedCount)
		for _, match := range result.TrackMatches {
			if match.Matched == nil {
				r.writePlain("  - %s - %s\n", match.Original.Artist, match.Original.Title)
			}
		}
	}
}

// Copy duplicates a playlist under a new name.
func (r *Runner) Copy(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	engine, err := r.engine(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("copying playlist", "source", id, "name", cmd.String("name"))
	progress, stop := r.trackProgress()
	result, err := engine.Copy(ctx, progress, id, cmd.String("name"))
	stop()
	if err != nil {
		return err
	}

	r.writeImportSummary(result)
	return nil
}

// Diff compares the tracks of two playlists.
func (r *Runner) Diff(ctx context.Context, cmd *cli.Command) error {
	sourceID, destID := cmd.StringArg("source"), cmd.StringArg("dest")
	if sourceID == "" || destID == "" {
		return fmt.Errorf("%w: source and destination playlist ids", shared.ErrMissingArgument)
	}

	engine, err := r.engine(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("diff requested", "source", sourceID, "dest", destID)
	progress, stop := r.trackProgress()
	result, err := engine.Diff(ctx, progress, sourceID, destID)
	stop()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"matched":         result.MatchedCount,
			"missing_in_dest": result.MissingInDest,
			"extra_in_dest":   result.ExtraInDest,
		}, true)
	}

	r.writePlain("\n✓ Source: %s (%d tracks)\n", result.Source.Playlist.Name, len(result.Source.Tracks))
	r.writePlain("✓ Destination: %s (%d tracks)\n\n", result.Dest.Playlist.Name, len(result.Dest.Tracks))
	r.writePlainHeader("Comparison Results")
	r.writePlain("Matched: %d tracks\n", result.MatchedCount)
	r.writePlain("Missing from destination: %d tracks\n", len(result.MissingInDest))
	r.writePlain("Extra in destination: %d tracks\n", len(result.ExtraInDest))

	if len(result.MissingInDest) > 0 {
		r.writePlain("\nMissing from destination:\n")
		for i, track := range result.MissingInDest {
			r.writePlain("  %d. %s - %s\n", i+1, track.Artist, track.Title)
		}
	}
	if len(result.ExtraInDest) > 0 {
		r.writePlain("\nExtra in destination (not in source):\n")
		for i, track := range result.ExtraInDest {
			r.writePlain("  %d. %s - %s\n", i+1, track.Artist, track.Title)
		}
	}
	return nil
}

// ExportAll exports every playlist of the authenticated user.
func (r *Runner) ExportAll(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.connectService(ctx)
	if err != nil {
		return err
	}

	playlists, err := svc.GetPlaylists(ctx)
	if err != nil {
		return err
	}
	if len(playlists) == 0 {
		return r.writePlain("No playlists found\n")
	}

	ids := make([]string, 0, len(playlists))
	for _, pl := range playlists {
		ids = append(ids, pl.ID)
	}

	r.logger.Info("bulk export", "playlists", len(ids), "format", cmd.String("format"))
	progress, stop := r.trackProgress()
	result, err := tasks.NewEngine(svc).BulkExport(ctx, progress, ids, tasks.BulkExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("dir"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  float64(cmd.Int("rate")),
		HTTPClient: r.httpClient,
	})
	stop()
	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Exported: %d/%d playlists\n", result.SuccessfulExports, result.TotalPlaylists)
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Manifest: %s\n", result.ManifestPath)
	if result.FailedExports > 0 {
		r.writePlain("\nFailed:\n")
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  - %s: %s\n", res.PlaylistName, res.ErrorMessage)
			}
		}
	}
	return nil
}
