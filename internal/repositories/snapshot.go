package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/spotify-backup/internal/models"
	"github.com/desertthunder/spotify-backup/internal/shared"
)

// SnapshotRepository stores export bundles as snapshots.
type SnapshotRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSnapshotRepository creates a new SnapshotRepository with the given database connection
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db, now: time.Now}
}

// Save stores bundle under a new id and returns the snapshot summary.
//
// sections records which parts of the library the bundle was fetched with.
func (r *SnapshotRepository) Save(ctx context.Context, bundle *models.ExportBundle, sections []string) (*models.Snapshot, error) {
	if bundle == nil {
		return nil, fmt.Errorf("%w: bundle is nil", shared.ErrInvalidInput)
	}

	snapshot := &models.Snapshot{
		SnapshotID:    shared.GenerateID(),
		Sections:      sections,
		PlaylistCount: len(bundle.Playlists),
		AlbumCount:    len(bundle.Albums),
		DegradedCount: len(bundle.Degraded),
		Created:       r.now().UTC(),
	}
	if err := snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	reasons := make(map[int]string, len(bundle.Degraded))
	for _, d := range bundle.Degraded {
		reasons[d.Index] = d.Reason
	}

	err := WithTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO exports (id, sections, playlist_count, album_count, degraded_count, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			snapshot.SnapshotID,
			strings.Join(snapshot.Sections, ","),
			snapshot.PlaylistCount,
			snapshot.AlbumCount,
			snapshot.DegradedCount,
			snapshot.Created,
		)
		if err != nil {
			return fmt.Errorf("failed to insert export: %w", err)
		}

		for i, playlist := range bundle.Playlists {
			var reason any
			if msg, ok := reasons[i]; ok {
				reason = msg
			}
			if err := insertPlaylist(ctx, tx, snapshot.SnapshotID, i, playlist, reason); err != nil {
				return err
			}
		}

		for i, album := range bundle.Albums {
			if err := insertAlbum(ctx, tx, snapshot.SnapshotID, i, album); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

func insertPlaylist(ctx context.Context, tx *sql.Tx, exportID string, position int, playlist models.Playlist, reason any) error {
	playlistID := shared.GenerateID()

	_, err := tx.ExecContext(ctx, `
		INSERT INTO playlists (id, export_id, position, spotify_id, name, degraded_reason)
		VALUES (?, ?, ?, ?, ?, ?)
	`, playlistID, exportID, position, playlist.ID, playlist.Name, reason)
	if err != nil {
		return fmt.Errorf("failed to insert playlist %q: %w", playlist.Name, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tracks (id, playlist_id, position, uri, name, artists, album, release_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare track insert: %w", err)
	}
	defer stmt.Close()

	for i, track := range playlist.Tracks {
		artists, err := encodeArtists(track.Artists)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			shared.GenerateID(),
			playlistID,
			i,
			track.URI,
			track.Name,
			artists,
			track.Album,
			track.ReleaseDate,
		); err != nil {
			return fmt.Errorf("failed to insert track %q: %w", track.Name, err)
		}
	}

	return nil
}

func insertAlbum(ctx context.Context, tx *sql.Tx, exportID string, position int, album models.Album) error {
	artists, err := encodeArtists(album.Artists)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO albums (id, export_id, position, uri, name, artists, release_date, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, shared.GenerateID(), exportID, position, album.URI, album.Name, artists, album.ReleaseDate, album.AddedAt)
	if err != nil {
		return fmt.Errorf("failed to insert album %q: %w", album.Name, err)
	}
	return nil
}

// List returns snapshot summaries, newest first. Bundles are not loaded.
func (r *SnapshotRepository) List(ctx context.Context) ([]*models.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sections, playlist_count, album_count, degraded_count, created_at
		FROM exports
		ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query exports: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.Snapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return snapshots, nil
}

// Get loads a snapshot and rebuilds its bundle in the stored order.
func (r *SnapshotRepository) Get(ctx context.Context, id string) (*models.Snapshot, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, sections, playlist_count, album_count, degraded_count, created_at
		FROM exports
		WHERE id = ?
	`, id)

	snapshot, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSnapshotNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	bundle := models.NewExportBundle()

	if bundle.Playlists, bundle.Degraded, err = r.playlists(ctx, id); err != nil {
		return nil, err
	}
	if bundle.Albums, err = r.albums(ctx, id); err != nil {
		return nil, err
	}

	snapshot.Bundle = bundle
	return snapshot, nil
}

// Delete removes a snapshot and everything stored under it.
func (r *SnapshotRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM exports WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete export: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSnapshotNotFound, id)
	}

	return nil
}

func (r *SnapshotRepository) playlists(ctx context.Context, exportID string) ([]models.Playlist, []models.DegradedPlaylist, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, position, spotify_id, name, degraded_reason
		FROM playlists
		WHERE export_id = ?
		ORDER BY position ASC
	`, exportID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	type ref struct {
		rowID    string
		playlist models.Playlist
	}

	var (
		refs     []ref
		degraded []models.DegradedPlaylist
	)
	for rows.Next() {
		var (
			rowID, spotifyID, name string
			position               int
			reason                 sql.NullString
		)
		if err := rows.Scan(&rowID, &position, &spotifyID, &name, &reason); err != nil {
			return nil, nil, fmt.Errorf("failed to scan playlist: %w", err)
		}

		refs = append(refs, ref{rowID: rowID, playlist: models.Playlist{ID: spotifyID, Name: name}})
		if reason.Valid {
			degraded = append(degraded, models.DegradedPlaylist{Index: position, Name: name, Reason: reason.String})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	playlists := make([]models.Playlist, 0, len(refs))
	for _, ref := range refs {
		tracks, err := r.tracks(ctx, ref.rowID)
		if err != nil {
			return nil, nil, err
		}
		ref.playlist.Tracks = tracks
		playlists = append(playlists, ref.playlist)
	}

	return playlists, degraded, nil
}

func (r *SnapshotRepository) tracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT uri, name, artists, album, release_date
		FROM tracks
		WHERE playlist_id = ?
		ORDER BY position ASC
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	tracks := []models.Track{}
	for rows.Next() {
		var (
			track   models.Track
			artists string
		)
		if err := rows.Scan(&track.URI, &track.Name, &artists, &track.Album, &track.ReleaseDate); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		if track.Artists, err = decodeArtists(artists); err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return tracks, nil
}

func (r *SnapshotRepository) albums(ctx context.Context, exportID string) ([]models.Album, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT uri, name, artists, release_date, added_at
		FROM albums
		WHERE export_id = ?
		ORDER BY position ASC
	`, exportID)
	if err != nil {
		return nil, fmt.Errorf("failed to query albums: %w", err)
	}
	defer rows.Close()

	albums := []models.Album{}
	for rows.Next() {
		var (
			album   models.Album
			artists string
		)
		if err := rows.Scan(&album.URI, &album.Name, &artists, &album.ReleaseDate, &album.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan album: %w", err)
		}
		if album.Artists, err = decodeArtists(artists); err != nil {
			return nil, err
		}
		albums = append(albums, album)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return albums, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*models.Snapshot, error) {
	var (
		snapshot models.Snapshot
		sections string
	)

	err := row.Scan(
		&snapshot.SnapshotID,
		&sections,
		&snapshot.PlaylistCount,
		&snapshot.AlbumCount,
		&snapshot.DegradedCount,
		&snapshot.Created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan export: %w", err)
	}

	if sections != "" {
		snapshot.Sections = strings.Split(sections, ",")
	}
	return &snapshot, nil
}
