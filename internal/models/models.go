// package models defines the data model for the scx client
package models

import (
	"time"
)

// Model defines the base interface for all persistent models.
// Implementations include [Credential] and [RequestLog].
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// base holds the fields shared by every persistent entity.
type base struct {
	id        string
	sequence  int
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

func newBase(sequence int) base {
	now := time.Now()
	return base{sequence: sequence, createdAt: now, updatedAt: now}
}

func (b *base) ID() string { return b.id }
func (b *base) Sequence() int { return b.sequence }
func (b *base) CreatedAt() time.Time { return b.createdAt }
func (b *base) UpdatedAt() time.Time { return b.updatedAt }
func (b *base) DeletedAt() *time.Time { return b.deletedAt }
func (b *base) SetID(id string) { b.id = id }
func (b *base) SetSequence(sequence int) { b.sequence = sequence }
func (b *base) SetCreatedAt(t time.Time) { b.createdAt = t }
func (b *base) SetUpdatedAt(t time.Time) { b.updatedAt = t }
func (b *base) SetDeletedAt(t *time.Time) { b.deletedAt = t }
func (b *base) IsDeleted() bool { return b.deletedAt != nil }

// Playlist is a SoundCloud playlist (a "set") without its tracks.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
	Permalink   string `json:"permalink_url,omitempty"`
	ArtworkURL  string `json:"artwork_url,omitempty"`
}

// PlaylistExport is a playlist with its full track listing.
type PlaylistExport struct {
	Playlist Playlist `json:"playlist"`
	Tracks   []Track  `json:"tracks"`
}

// Track is a SoundCloud track.
type Track struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Album     string `json:"album,omitempty"`
	Duration  int    `json:"duration"` // Duration in seconds
	ISRC      string `json:"isrc,omitempty"`
	Genre     string `json:"genre,omitempty"`
	Permalink string `json:"permalink_url,omitempty"`
}

// User is the authenticated SoundCloud account.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name,omitempty"`
	Permalink string `json:"permalink_url,omitempty"`
	Playlists int    `json:"playlist_count"`
	Tracks    int    `json:"track_count"`
}
