// Spotify API payload types
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"github.com/desertthunder/spotify-backup/internal/models"
)

const (
	SpotifyAuthURL  = "https://accounts.spotify.com/authorize"
	SpotifyTokenURL = "https://accounts.spotify.com/api/token"

	// Page sizes accepted by the library endpoints.
	LibraryPageSize  = 50
	PlaylistPageSize = 100
)

// SpotifyArtist represents a simplified artist object.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents an album object.
type SpotifyAlbum struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	ReleaseDate string          `json:"release_date"`
	TotalTracks int             `json:"total_tracks"`
	URI         string          `json:"uri"`
}

// SpotifyTrack represents a track object.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	URI        string          `json:"uri"`
}

// SpotifyTrackItem is an entry of /me/tracks or a playlist's tracks.
//
// Track is nil for entries the provider no longer resolves.
type SpotifyTrackItem struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyAlbumItem is an entry of /me/albums.
type SpotifyAlbumItem struct {
	AddedAt string        `json:"added_at"`
	Album   *SpotifyAlbum `json:"album"`
}

type playlistTracksRef struct {
	Href  string `json:"href"`
	Total int    `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object from /me/playlists.
type SpotifySimplePlaylist struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Tracks playlistTracksRef `json:"tracks"`
	URI    string            `json:"uri"`
}

// TracksPath returns the playlist's tracks link, falling back to the relative endpoint.
func (p SpotifySimplePlaylist) TracksPath() string {
	if p.Tracks.Href != "" {
		return p.Tracks.Href
	}
	return "playlists/" + p.ID + "/tracks"
}

func artistNames(artists []SpotifyArtist) []string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return names
}

// Model converts the track into a [models.Track].
func (t SpotifyTrack) Model() models.Track {
	return models.Track{
		URI:         t.URI,
		Name:        t.Name,
		Artists:     artistNames(t.Artists),
		Album:       t.Album.Name,
		ReleaseDate: t.Album.ReleaseDate,
	}
}

// Model converts the saved album into a [models.Album].
func (a SpotifyAlbumItem) Model() (models.Album, bool) {
	if a.Album == nil {
		return models.Album{}, false
	}
	return models.Album{
		URI:         a.Album.URI,
		Name:        a.Album.Name,
		Artists:     artistNames(a.Album.Artists),
		ReleaseDate: a.Album.ReleaseDate,
		AddedAt:     a.AddedAt,
	}, true
}

// TracksFromItems decodes track entries, skipping those whose track is null.
func TracksFromItems(items []JSONObject) ([]models.Track, error) {
	entries, err := DecodeAll[SpotifyTrackItem](items)
	if err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(entries))
	for _, e := range entries {
		if e.Track == nil {
			continue
		}
		tracks = append(tracks, e.Track.Model())
	}
	return tracks, nil
}

// AlbumsFromItems decodes saved album entries, skipping those whose album is null.
func AlbumsFromItems(items []JSONObject) ([]models.Album, error) {
	entries, err := DecodeAll[SpotifyAlbumItem](items)
	if err != nil {
		return nil, err
	}

	albums := make([]models.Album, 0, len(entries))
	for _, e := range entries {
		if album, ok := e.Model(); ok {
			albums = append(albums, album)
		}
	}
	return albums, nil
}
