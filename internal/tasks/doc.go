// Package tasks turns the provider's paginated library endpoints into a [models.ExportBundle].
//
// # Library Fetch
//
// [LibraryFetcher.Fetch] loads the sections selected by [Sections]:
//
//  1. liked: /me/tracks becomes the synthetic "Liked Songs" playlist, /me/albums the album list
//  2. playlists: /me/playlists, then the tracks link of every playlist
//
// Liked Songs always comes first, followed by the playlists in provider order.
//
// # Partial Failures
//
// A playlist whose tracks cannot be fetched is logged, reported as a [PlaylistTrackFetchError]
// and kept with an empty track list. Failures of the liked endpoints or the playlist index,
// and context cancellation, abort the fetch.
//
// # Concurrency
//
// Playlist track fetches may run on up to ten workers. Each result is written to the slot of its
// playlist index, so output order never depends on completion order.
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data.
// Updates use select with default to prevent blocking.
package tasks
