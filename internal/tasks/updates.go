package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchLiked Phase = iota
	FetchAlbums
	FetchPlaylists
	FetchPlaylistTracks
	PlaylistDegraded
	FetchDone
)

func (p Phase) String() string {
	switch p {
	case FetchLiked:
		return "fetch_liked"
	case FetchAlbums:
		return "fetch_albums"
	case FetchPlaylists:
		return "fetch_playlists"
	case FetchPlaylistTracks:
		return "fetch_playlist_tracks"
	case PlaylistDegraded:
		return "playlist_degraded"
	case FetchDone:
		return "fetch_done"
	default:
		return ""
	}
}

func likedTracksUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLiked,
		Step:    0,
		Total:   1,
		Message: "Loading liked songs...",
	}
}

func likedAlbumsUpdate(tracks int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchAlbums,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loaded %d liked tracks, loading liked albums...", tracks),
	}
}

func playlistIndexUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    0,
		Total:   1,
		Message: "Loading playlists...",
	}
}

func foundPlaylistsUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d playlists", total),
	}
}

func playlistTracksUpdate(step, total int, name string, tracks int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylistTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s (%d tracks)", step, total, name, tracks),
	}
}

func playlistDegradedUpdate(step, total int, err *PlaylistTrackFetchError) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PlaylistDegraded,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, err.Name, err.Err),
		Data:    err,
	}
}

func fetchDoneUpdate(playlists, albums int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchDone,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loaded %d playlists and %d albums", playlists, albums),
	}
}
