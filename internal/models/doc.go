// Package models defines the library export data model and the persisted snapshot entity.
//
// Data returned by the provider:
//   - [Track] : a playlist entry with its artist names and album
//   - [Playlist] : an ordered list of tracks, including the synthetic [LikedSongsName] playlist
//   - [Album] : an album saved in the user's library
//
// [ExportBundle] groups everything a single export produced. Playlists that could not be fetched
// are kept with an empty track list and reported through [ExportBundle.Degraded].
//
// [Snapshot] is the database-backed record of a saved export and implements [Model].
package models
