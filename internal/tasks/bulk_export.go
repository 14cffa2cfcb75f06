package tasks

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/desertthunder/scx/internal/formatter"
	"github.com/desertthunder/scx/internal/shared"
	"golang.org/x/time/rate"
)

const (
	DefaultWorkers   = 5
	MaxWorkers       = 10
	DefaultRateLimit = 5.0
	ManifestFile     = "export_manifest.json"
)

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format     string       // Export format: json, csv, md, txt
	OutputDir  string       // Base output directory (default: soundcloud_export_{epoch})
	NumWorkers int          // Concurrent workers (default: 5, max: 10)
	RateLimit  float64      // Playlist fetches per second (default: 5)
	HTTPClient *http.Client // Used for Markdown cover images
}

// BulkExportResult summarizes a bulk export and is written as the manifest.
type BulkExportResult struct {
	ExportedAt        time.Time              `json:"exported_at"`
	Format            string                 `json:"format"`
	TotalPlaylists    int                    `json:"total_playlists"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	OutputDirectory   string                 `json:"output_directory"`
	Results           []PlaylistExportResult `json:"playlists"`
	ManifestPath      string                 `json:"-"`
}

// PlaylistExportResult is the outcome for one playlist.
type PlaylistExportResult struct {
	PlaylistID   string   `json:"id"`
	PlaylistName string   `json:"name,omitempty"`
	Success      bool     `json:"success"`
	Files        []string `json:"files,omitempty"`
	Error        error    `json:"-"`
	ErrorMessage string   `json:"error,omitempty"`

	index int
}

// PlaylistExportJob is a unit of work for an export worker.
type PlaylistExportJob struct {
	PlaylistID string
	index      int
}

// BulkExport exports playlists concurrently.
//
// Workers share one limiter so playlist fetches never exceed opts.RateLimit per second.
// A failed playlist is recorded and does not stop the others. The manifest is written to
// {OutputDir}/export_manifest.json with results in the order of ids.
func (e *Engine) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, ids []string, opts BulkExportOpts) (*BulkExportResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	format, err := formatter.ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	opts.Format = format

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("soundcloud_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = DefaultWorkers
	}
	if opts.NumWorkers > MaxWorkers {
		opts.NumWorkers = MaxWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		ExportedAt:      time.Now().UTC(),
		Format:          opts.Format,
		TotalPlaylists:  len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan PlaylistExportJob, len(ids))
	results := make(chan PlaylistExportResult, len(ids))

	for i, id := range ids {
		jobs <- PlaylistExportJob{PlaylistID: id, index: i}
	}
	close(jobs)

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, limiter, jobs, results, opts)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.PlaylistName, len(res.Files)))
		} else {
			result.FailedExports++
			res.ErrorMessage = res.Error.Error()
			e.sendProgress(prog, exportFailedUpdate(completed, len(ids), res.PlaylistName, res.Error))
		}
		result.Results = append(result.Results, res)
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	sort.Slice(result.Results, func(i, j int) bool {
		return result.Results[i].index < result.Results[j].index
	})

	data, err := shared.MarshalJSON(result)
	if err != nil {
		return result, fmt.Errorf("export completed but failed to encode manifest: %w", err)
	}
	manifestPath := filepath.Join(opts.OutputDir, ManifestFile)
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker fetches and writes playlists from jobs until it is drained or ctx is done.
func (e *Engine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan PlaylistExportJob,
	results chan<- PlaylistExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		results <- e.exportSinglePlaylist(ctx, job, opts)
	}
}

func (e *Engine) exportSinglePlaylist(ctx context.Context, j PlaylistExportJob, opts BulkExportOpts) PlaylistExportResult {
	res := PlaylistExportResult{
		PlaylistID:   j.PlaylistID,
		PlaylistName: fmt.Sprintf("Unknown (%s)", j.PlaylistID),
		index:        j.index,
	}

	export, err := e.svc.ExportPlaylist(ctx, j.PlaylistID)
	if err != nil {
		res.Error = fmt.Errorf("failed to fetch playlist: %w", err)
		return res
	}
	res.PlaylistName = export.Playlist.Name

	written, err := formatter.Write(ctx, export, formatter.Options{
		Format:     opts.Format,
		Path:       filepath.Join(opts.OutputDir, j.PlaylistID),
		HTTPClient: opts.HTTPClient,
	})
	if err != nil {
		res.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
		return res
	}

	res.Files = written.Files
	res.Success = true
	return res
}
