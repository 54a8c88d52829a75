// Package ui renders terminal output for the CLI.
//
// The pieces are:
//   - [Palette] : lipgloss styles for titles, success, warning and error lines
//   - [Progress] : a progressbar spinner fed by [tasks.ProgressUpdate] values
//   - [SnapshotTable] : a lipgloss table of stored snapshots
//   - [Browser] : a bubbletea program that browses a stored snapshot
//
// # Browser
//
// The browser is read-only and built on [list.Model]. It starts on the snapshot's playlists;
// enter opens a playlist's tracks, a shows the saved albums, esc goes back and q quits.
// Playlists exported without tracks are flagged with the reason they could not be fetched.
//
// Colors are dropped when stdout is not a terminal.
package ui
