// Package tasks runs multi-request playlist operations on top of a [services.Service] with
// non-blocking progress reporting.
//
// # Operations
//
// [Engine] provides:
//
//  1. [Engine.Import] : Create a playlist from an export
//     - Resolves tracks without an id through [services.Service.SearchTrack]
//     - Creates the playlist with the resolved tracks
//     - Reports which tracks could not be matched
//
//  2. [Engine.Copy] : Export a playlist and import it under a new name
//
//  3. [Engine.Diff] : Compare two playlists
//     - Matches tracks by id, then ISRC, then normalized title and artist
//     - Reports matched count, missing tracks and extra tracks
//
//  4. [Engine.BulkExport] : Export many playlists with a worker pool
//     - Playlists are fetched at a bounded rate ([golang.org/x/time/rate])
//     - Files are written by [formatter.Write]; failures do not stop the run
//     - A manifest summarizing the run is written to the output directory
//
// # Progress Reporting
//
// Operations accept an optional channel of [ProgressUpdate]. Sends use select with default,
// so a slow or absent reader never blocks an operation.
package tasks
