package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/desertthunder/scx/internal/formatter"
	"github.com/desertthunder/scx/internal/models"
	"github.com/desertthunder/scx/internal/shared"
	"github.com/urfave/cli/v3"
)

// userService is implemented by services that can describe the authenticated account.
type userService interface {
	Me(ctx context.Context) (*models.User, error)
}

// Me prints the authenticated user.
func (r *Runner) Me(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.connectService(ctx)
	if err != nil {
		return err
	}
	us, ok := svc.(userService)
	if !ok {
		return fmt.Errorf("%w: %s cannot describe the current user", shared.ErrNotImplemented, svc.Name())
	}

	user, err := us.Me(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, true)
	}
	r.writePlain("%s", user.Username)
	if user.FullName != "" {
		r.writePlain(" (%s)", user.FullName)
	}
	r.writePlain("\nID: %s\nPlaylists: %d\nTracks: %d\n", user.ID, user.Playlists, user.Tracks)
	if user.Permalink != "" {
		r.writePlain("URL: %s\n", user.Permalink)
	}
	return nil
}

// Playlists lists the authenticated user's playlists.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.connectService(ctx)
	if err != nil {
		return err
	}

	limit := cmd.Int("limit")
	r.logger.Infof("listing playlists with limit %v", limit)

	playlists, err := svc.GetPlaylists(ctx)
	if err != nil {
		return err
	}
	if limit > 0 && limit < len(playlists) {
		playlists = playlists[:limit]
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	if len(playlists) == 0 {
		return r.writePlain("No playlists found\n")
	}
	for _, pl := range playlists {
		r.writePlain("%-12s %s (%d tracks, %s)\n", pl.ID, pl.Name, pl.TrackCount, formatter.Visibility(pl.Public))
	}
	return nil
}

// Export writes a playlist and its tracks in the requested format.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("all") {
		return r.ExportAll(ctx, cmd)
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	svc, err := r.connectService(ctx)
	if err != nil {
		return err
	}

	r.logger.Infof("exporting playlist %s", id)
	export, err := svc.ExportPlaylist(ctx, id)
	if err != nil {
		return err
	}

	result, err := formatter.Write(ctx, export, formatter.Options{
		Format:     cmd.String("format"),
		Path:       cmd.String("output"),
		HTTPClient: r.httpClient,
		Warn:       func(msg string, kv ...any) { r.logger.Warn(msg, kv...) },
	})
	if err != nil {
		return err
	}

	r.logger.Infof("playlist exported with %v tracks", len(export.Tracks))
	r.writePlain("✓ Playlist exported: %s\n", export.Playlist.Name)
	r.writePlain("  Tracks: %d\n", len(export.Tracks))
	for _, f := range result.Files {
		r.writePlain("  → %s\n", f)
	}
	return nil
}

// Import creates a playlist from a JSON export written by `scx export --format json`.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: file", shared.ErrMissingArgument)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	var export models.PlaylistExport
	if err := json.Unmarshal(data, &export); err != nil {
		return fmt.Errorf("%w: %s is not a playlist export: %w", shared.ErrInvalidInput, path, err)
	}
	if name := cmd.String("name"); name != "" {
		export.Playlist.Name = name
	}
	if cmd.Bool("private") {
		export.Playlist.Public = false
	}
	if export.Playlist.Name == "" {
		return fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	engine, err := r.engine(ctx)
	if err != nil {
		return err
	}

	progress, stop := r.trackProgress()
	result, err := engine.Import(ctx, progress, &export)
	stop()
	if err != nil {
		return err
	}

	r.writeImportSummary(result)
	return nil
}

// Search prints the track that best matches a title and optional artist.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	title := cmd.StringArg("title")
	if title == "" {
		return fmt.Errorf("%w: title", shared.ErrMissingArgument)
	}

	svc, err := r.connectService(ctx)
	if err != nil {
		return err
	}

	track, err := svc.SearchTrack(ctx, title, cmd.String("artist"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(track, true)
	}
	r.writePlain("%s - %s [%s]\n", track.Artist, track.Title, formatter.FormatDuration(track.Duration))
	r.writePlain("ID: %s\n", track.ID)
	if track.Permalink != "" {
		r.writePlain("URL: %s\n", track.Permalink)
	}
	return nil
}
