package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/scx/internal/models"
	"github.com/desertthunder/scx/internal/services"
	"github.com/desertthunder/scx/internal/shared"
)

// TrackMatchResult represents the result of attempting to resolve a single track.
type TrackMatchResult struct {
	Original models.Track  // Track as given
	Matched  *models.Track // Resolved track (nil if not found)
	Error    error         // Error if resolution failed
}

// ImportResult contains all data from an import or copy.
type ImportResult struct {
	Source          *models.PlaylistExport // Playlist as given
	Created         *models.Playlist       // Playlist created on SoundCloud
	TrackMatches    []TrackMatchResult     // Individual track results
	SuccessCount    int                    // Tracks added
	FailedCount     int                    // Tracks that could not be resolved
	TotalTracks     int                    // Tracks processed
	MatchPercentage float64                // Success rate as percentage
}

// ComparisonResult contains track comparison details between two playlists.
type ComparisonResult struct {
	Source        *models.PlaylistExport
	Dest          *models.PlaylistExport
	MatchedCount  int            // Tracks found in both
	MissingInDest []models.Track // Tracks in source but not in dest
	ExtraInDest   []models.Track // Tracks in dest but not in source
}

// Engine runs playlist operations against a single service.
type Engine struct {
	svc services.Service
}

// NewEngine creates an Engine for svc.
func NewEngine(svc services.Service) *Engine {
	return &Engine{svc: svc}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func (e *Engine) ready() error {
	if e.svc == nil {
		return fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

// Import creates a playlist from export.
//
// Tracks with an id are added as-is; the others are looked up by title and artist.
// Tracks that cannot be found are reported in the result and left out of the playlist.
func (e *Engine) Import(ctx context.Context, progress chan<- ProgressUpdate, export *models.PlaylistExport) (*ImportResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if export == nil || export.Playlist.Name == "" {
		return nil, fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	total := len(export.Tracks)
	result := &ImportResult{
		Source:       export,
		TrackMatches: make([]TrackMatchResult, 0, total),
		TotalTracks:  total,
	}

	resolved := make([]models.Track, 0, total)
	for i, track := range export.Tracks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e.sendProgress(progress, searchTracksUpdate(i+1, total, track))

		match := TrackMatchResult{Original: track}
		if track.ID != "" {
			t := track
			match.Matched = &t
		} else {
			found, err := e.svc.SearchTrack(ctx, track.Title, track.Artist)
			if err != nil {
				match.Error = err
			} else {
				match.Matched = found
			}
		}

		if match.Matched != nil {
			resolved = append(resolved, *match.Matched)
			result.SuccessCount++
		} else {
			result.FailedCount++
		}
		result.TrackMatches = append(result.TrackMatches, match)
	}

	if total > 0 {
		result.MatchPercentage = float64(result.SuccessCount) / float64(total) * 100
	}

	e.sendProgress(progress, createPlaylistUpdate(export.Playlist.Name, len(resolved)))
	created, err := e.svc.ImportPlaylist(ctx, &models.PlaylistExport{Playlist: export.Playlist, Tracks: resolved})
	if err != nil {
		return result, fmt.Errorf("failed to create playlist: %w", err)
	}
	result.Created = created
	e.sendProgress(progress, playlistCreatedUpdate(created))

	return result, nil
}

// Copy exports sourceID and imports it as a new playlist named name.
// An empty name keeps the source name.
func (e *Engine) Copy(ctx context.Context, progress chan<- ProgressUpdate, sourceID, name string) (*ImportResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	e.sendProgress(progress, fetchSourceUpdate(sourceID))
	export, err := e.svc.ExportPlaylist(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source playlist: %w", err)
	}
	e.sendProgress(progress, foundPlaylistUpdate(export))

	if name != "" {
		export.Playlist.Name = name
	}
	return e.Import(ctx, progress, export)
}

// Diff compares the tracks of two playlists.
func (e *Engine) Diff(ctx context.Context, progress chan<- ProgressUpdate, sourceID, destID string) (*ComparisonResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	e.sendProgress(progress, fetchSourceUpdate(sourceID))
	source, err := e.svc.ExportPlaylist(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source playlist: %w", err)
	}

	e.sendProgress(progress, fetchDestUpdate(destID))
	dest, err := e.svc.ExportPlaylist(ctx, destID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch destination playlist: %w", err)
	}

	result := CompareTracks(source.Tracks, dest.Tracks)
	result.Source = source
	result.Dest = dest
	e.sendProgress(progress, compareUpdate(len(source.Tracks), len(source.Tracks)))
	return result, nil
}

// CompareTracks matches source tracks against dest by id, then ISRC, then normalized
// title and artist. Each dest track matches at most once.
func CompareTracks(source, dest []models.Track) *ComparisonResult {
	byID := map[string][]int{}
	byISRC := map[string][]int{}
	byKey := map[string][]int{}
	for i, t := range dest {
		if t.ID != "" {
			byID[t.ID] = append(byID[t.ID], i)
		}
		if t.ISRC != "" {
			byISRC[t.ISRC] = append(byISRC[t.ISRC], i)
		}
		byKey[shared.NormalizeTrackKey(t.Title, t.Artist)] = append(byKey[shared.NormalizeTrackKey(t.Title, t.Artist)], i)
	}

	used := make([]bool, len(dest))
	take := func(candidates []int) bool {
		for _, i := range candidates {
			if !used[i] {
				used[i] = true
				return true
			}
		}
		return false
	}

	result := &ComparisonResult{}
	for _, t := range source {
		switch {
		case t.ID != "" && take(byID[t.ID]):
		case t.ISRC != "" && take(byISRC[t.ISRC]):
		case take(byKey[shared.NormalizeTrackKey(t.Title, t.Artist)]):
		default:
			result.MissingInDest = append(result.MissingInDest, t)
			continue
		}
		result.MatchedCount++
	}

	for i, t := range dest {
		if !used[i] {
			result.ExtraInDest = append(result.ExtraInDest, t)
		}
	}
	return result
}
