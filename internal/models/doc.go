// Package models defines domain entities and persistence interfaces for scx.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): plain structs mapped from SoundCloud responses
//   - [Playlist] : playlist (set) metadata
//   - [PlaylistExport] : playlist with its complete track listing
//   - [Track] : track metadata
//   - [User] : the authenticated account
//
// 2. Persistent Entities: database-backed models
//   - [Credential] : OAuth tokens per site and client id
//   - [RequestLog] : API calls issued from the CLI
//
// Persistent entities implement the Model interface providing ID, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
