package tasks

import (
	"fmt"

	"github.com/desertthunder/scx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchSource Phase = iota
	FetchDest
	Compare
	SearchTracks
	CreatePlaylist
	ExportPlaylist
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case FetchDest:
		return "fetch_dest"
	case Compare:
		return "compare"
	case SearchTracks:
		return "search_tracks"
	case CreatePlaylist:
		return "create_playlist"
	case ExportPlaylist:
		return "export_playlist"
	default:
		return ""
	}
}

func fetchSourceUpdate(id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching playlist %s...", id),
	}
}

func foundPlaylistUpdate(export *models.PlaylistExport) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found playlist: %s (%d tracks)", export.Playlist.Name, len(export.Tracks)),
		Data:    export,
	}
}

func fetchDestUpdate(id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchDest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching playlist %s...", id),
	}
}

func compareUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Compare,
		Step:    step,
		Total:   total,
		Message: "Comparing tracks...",
	}
}

func searchTracksUpdate(step, total int, tr models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, tr.Artist, tr.Title),
	}
}

func createPlaylistUpdate(name string, tracks int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %s with %d tracks...", name, tracks),
	}
}

func playlistCreatedUpdate(pl *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", pl.Name, pl.ID),
		Data:    pl,
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
