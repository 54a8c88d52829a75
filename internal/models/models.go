// package models defines the library export data model.
//
// Every collection keeps the order the provider returned it in.
package models

import (
	"errors"
	"time"
)

// LikedSongsName is the name of the synthetic playlist holding the user's liked tracks.
const LikedSongsName = "Liked Songs"

// Track is a single track in a playlist.
type Track struct {
	URI         string   `json:"uri"`
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	Album       string   `json:"album"`
	ReleaseDate string   `json:"release_date"`
}

// Playlist is a named, ordered list of tracks.
type Playlist struct {
	ID     string  `json:"id,omitempty"`
	Name   string  `json:"name"`
	Tracks []Track `json:"tracks"`
}

// Album is an album saved in the user's library.
type Album struct {
	URI         string   `json:"uri"`
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	ReleaseDate string   `json:"release_date"`
	AddedAt     string   `json:"added_at,omitempty"`
}

// DegradedPlaylist records a playlist whose tracks could not be fetched.
type DegradedPlaylist struct {
	Index  int
	Name   string
	Reason string
}

// ExportBundle is the complete result of a library fetch.
type ExportBundle struct {
	Playlists []Playlist `json:"playlists"`
	Albums    []Album    `json:"albums"`

	// Degraded lists playlists exported with an empty track list; it is not serialized.
	Degraded []DegradedPlaylist `json:"-"`
}

// NewExportBundle returns a bundle with non-nil collections so it serializes as empty arrays.
func NewExportBundle() *ExportBundle {
	return &ExportBundle{
		Playlists: []Playlist{},
		Albums:    []Album{},
	}
}

// TrackCount returns the number of tracks across all playlists.
func (b *ExportBundle) TrackCount() int {
	n := 0
	for _, p := range b.Playlists {
		n += len(p.Tracks)
	}
	return n
}

// Model defines the base interface for persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Snapshot is a saved export with summary counts.
//
// Bundle is only populated when a snapshot is loaded in full.
type Snapshot struct {
	SnapshotID    string
	Sections      []string
	PlaylistCount int
	AlbumCount    int
	DegradedCount int
	Created       time.Time
	Bundle        *ExportBundle
}

func (s *Snapshot) ID() string           { return s.SnapshotID }
func (s *Snapshot) CreatedAt() time.Time { return s.Created }

// Validate checks that the snapshot has an identifier and at least one section.
func (s *Snapshot) Validate() error {
	if s.SnapshotID == "" {
		return errors.New("snapshot id is required")
	}
	if len(s.Sections) == 0 {
		return errors.New("snapshot must record at least one section")
	}
	return nil
}
