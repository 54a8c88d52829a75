package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/spotify-backup/internal/models"
	"github.com/desertthunder/spotify-backup/internal/shared"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = trackItem{}
	_ list.Item = albumItem{}
)

// playlistItem wraps [models.Playlist] to implement [list.Item].
//
// reason is set when the playlist's tracks could not be fetched.
type playlistItem struct {
	index    int
	playlist models.Playlist
	reason   string
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d tracks", len(i.playlist.Tracks))
	if i.reason != "" {
		desc = fmt.Sprintf("%s • not fetched: %s", desc, i.reason)
	}
	return desc
}

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string       { return i.track.Name }
func (i trackItem) Description() string {
	desc := shared.JoinArtists(i.track.Artists)
	if i.track.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album)
	}
	return desc
}

// albumItem wraps [models.Album] to implement [list.Item].
type albumItem struct {
	album models.Album
}

func (i albumItem) FilterValue() string { return i.album.Name }
func (i albumItem) Title() string       { return i.album.Name }
func (i albumItem) Description() string {
	desc := shared.JoinArtists(i.album.Artists)
	if i.album.ReleaseDate != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.album.ReleaseDate)
	}
	return desc
}

func playlistItems(bundle *models.ExportBundle) []list.Item {
	reasons := make(map[int]string, len(bundle.Degraded))
	for _, d := range bundle.Degraded {
		reasons[d.Index] = d.Reason
	}

	items := make([]list.Item, len(bundle.Playlists))
	for i, p := range bundle.Playlists {
		items[i] = playlistItem{index: i, playlist: p, reason: reasons[i]}
	}
	return items
}

func trackItems(tracks []models.Track) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem{track: t}
	}
	return items
}

func albumItems(albums []models.Album) []list.Item {
	items := make([]list.Item, len(albums))
	for i, a := range albums {
		items[i] = albumItem{album: a}
	}
	return items
}
