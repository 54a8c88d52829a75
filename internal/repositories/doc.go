// Package repositories implements SQLite persistence for export snapshots.
//
// A snapshot is one stored export run. Playlists, tracks and albums are kept in their own tables with an explicit
// position column, so a snapshot read back with [SnapshotRepository.Get] has the same order the provider returned.
//
// Key Implementations:
//   - [SnapshotRepository] : Save, list, load and delete stored exports
//   - [WithTx] : Transaction helper shared by multi-table writes
//
// Row identifiers are v4 UUIDs from [shared.GenerateID]. Artist lists are stored as JSON arrays.
package repositories
