package repositories

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/desertthunder/spotify-backup/internal/models"
	"github.com/desertthunder/spotify-backup/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func testBundle() *models.ExportBundle {
	return &models.ExportBundle{
		Playlists: []models.Playlist{
			{
				Name: models.LikedSongsName,
				Tracks: []models.Track{
					{URI: "spotify:track:1", Name: "One", Artists: []string{"A", "B"}, Album: "X", ReleaseDate: "2020"},
					{URI: "spotify:track:2", Name: "Two", Artists: []string{"C"}, Album: "Y", ReleaseDate: "2021-02-03"},
				},
			},
			{ID: "p1", Name: "Broken", Tracks: []models.Track{}},
			{
				ID:   "p2",
				Name: "Road Trip",
				Tracks: []models.Track{
					{URI: "spotify:track:3", Name: "Three", Artists: []string{}, Album: "Z", ReleaseDate: "1999"},
				},
			},
		},
		Albums: []models.Album{
			{URI: "spotify:album:1", Name: "X", Artists: []string{"A"}, ReleaseDate: "2020", AddedAt: "2024-01-01T00:00:00Z"},
			{URI: "spotify:album:2", Name: "Y", Artists: []string{"C"}, ReleaseDate: "2021-02-03"},
		},
		Degraded: []models.DegradedPlaylist{
			{Index: 1, Name: "Broken", Reason: "status 500"},
		},
	}
}

func TestSnapshotRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Save", func(t *testing.T) {
		repo := NewSnapshotRepository(setupTestDB(t))

		snapshot, err := repo.Save(ctx, testBundle(), []string{"liked", "playlists"})
		if err != nil {
			t.Fatalf("failed to save snapshot: %v", err)
		}

		if snapshot.ID() == "" {
			t.Error("snapshot ID should be set after save")
		}
		if snapshot.PlaylistCount != 3 || snapshot.AlbumCount != 2 || snapshot.DegradedCount != 1 {
			t.Errorf("unexpected counts: %+v", snapshot)
		}
		if snapshot.CreatedAt().IsZero() {
			t.Error("created time should be set")
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewSnapshotRepository(setupTestDB(t))
		want := testBundle()

		saved, err := repo.Save(ctx, want, []string{"liked", "playlists"})
		if err != nil {
			t.Fatalf("failed to save snapshot: %v", err)
		}

		got, err := repo.Get(ctx, saved.ID())
		if err != nil {
			t.Fatalf("failed to get snapshot: %v", err)
		}

		if !reflect.DeepEqual(got.Sections, []string{"liked", "playlists"}) {
			t.Errorf("unexpected sections: %v", got.Sections)
		}
		if !reflect.DeepEqual(got.Bundle.Playlists, want.Playlists) {
			t.Errorf("playlists differ:\n got: %+v\nwant: %+v", got.Bundle.Playlists, want.Playlists)
		}
		if !reflect.DeepEqual(got.Bundle.Albums, want.Albums) {
			t.Errorf("albums differ:\n got: %+v\nwant: %+v", got.Bundle.Albums, want.Albums)
		}
		if !reflect.DeepEqual(got.Bundle.Degraded, want.Degraded) {
			t.Errorf("degraded differ:\n got: %+v\nwant: %+v", got.Bundle.Degraded, want.Degraded)
		}
	})

	t.Run("Get empty bundle", func(t *testing.T) {
		repo := NewSnapshotRepository(setupTestDB(t))

		saved, err := repo.Save(ctx, models.NewExportBundle(), []string{"liked"})
		if err != nil {
			t.Fatalf("failed to save snapshot: %v", err)
		}

		got, err := repo.Get(ctx, saved.ID())
		if err != nil {
			t.Fatalf("failed to get snapshot: %v", err)
		}
		if got.Bundle.Playlists == nil || got.Bundle.Albums == nil {
			t.Error("collections should be non-nil")
		}
		if len(got.Bundle.Playlists) != 0 || len(got.Bundle.Albums) != 0 {
			t.Errorf("expected empty bundle, got %+v", got.Bundle)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewSnapshotRepository(setupTestDB(t))
		base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
		calls := 0
		repo.now = func() time.Time {
			calls++
			return base.Add(time.Duration(calls) * time.Minute)
		}

		first, err := repo.Save(ctx, testBundle(), []string{"liked"})
		if err != nil {
			t.Fatalf("failed to save first snapshot: %v", err)
		}
		second, err := repo.Save(ctx, models.NewExportBundle(), []string{"playlists"})
		if err != nil {
			t.Fatalf("failed to save second snapshot: %v", err)
		}

		snapshots, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("failed to list snapshots: %v", err)
		}

		if len(snapshots) != 2 {
			t.Fatalf("expected 2 snapshots, got %d", len(snapshots))
		}
		if snapshots[0].ID() != second.ID() || snapshots[1].ID() != first.ID() {
			t.Errorf("expected newest first, got %s, %s", snapshots[0].ID(), snapshots[1].ID())
		}
		if snapshots[1].PlaylistCount != 3 {
			t.Errorf("expected summary counts, got %+v", snapshots[1])
		}
		if snapshots[0].Bundle != nil {
			t.Error("List should not load bundles")
		}
		if !snapshots[1].CreatedAt().Equal(base.Add(time.Minute)) {
			t.Errorf("unexpected created time: %v", snapshots[1].CreatedAt())
		}
	})

	t.Run("List empty", func(t *testing.T) {
		repo := NewSnapshotRepository(setupTestDB(t))

		snapshots, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("failed to list snapshots: %v", err)
		}
		if len(snapshots) != 0 {
			t.Errorf("expected no snapshots, got %d", len(snapshots))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewSnapshotRepository(db)

		saved, err := repo.Save(ctx, testBundle(), []string{"liked"})
		if err != nil {
			t.Fatalf("failed to save snapshot: %v", err)
		}

		if err := repo.Delete(ctx, saved.ID()); err != nil {
			t.Fatalf("failed to delete snapshot: %v", err)
		}

		if _, err := repo.Get(ctx, saved.ID()); !errors.Is(err, shared.ErrSnapshotNotFound) {
			t.Errorf("expected ErrSnapshotNotFound after delete, got %v", err)
		}

		var tracks int
		if err := db.QueryRow("SELECT COUNT(*) FROM tracks").Scan(&tracks); err != nil {
			t.Fatalf("failed to count tracks: %v", err)
		}
		if tracks != 0 {
			t.Errorf("expected tracks to cascade, %d remain", tracks)
		}
	})
}

func TestSnapshotRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Save", func(t *testing.T) {
		t.Run("NilBundle", func(t *testing.T) {
			repo := NewSnapshotRepository(setupTestDB(t))
			if _, err := repo.Save(ctx, nil, []string{"liked"}); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})

		t.Run("ValidationError", func(t *testing.T) {
			repo := NewSnapshotRepository(setupTestDB(t))
			if _, err := repo.Save(ctx, testBundle(), nil); err == nil {
				t.Fatal("expected validation error for missing sections")
			}
		})

		t.Run("ClosedDatabase", func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewSnapshotRepository(db)
			db.Close()

			if _, err := repo.Save(ctx, testBundle(), []string{"liked"}); err == nil {
				t.Fatal("expected error with closed database")
			}
		})

		t.Run("NothingWrittenOnFailure", func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewSnapshotRepository(db)

			if _, err := db.Exec("DROP TABLE albums"); err != nil {
				t.Fatalf("failed to drop albums: %v", err)
			}

			if _, err := repo.Save(ctx, testBundle(), []string{"liked"}); err == nil {
				t.Fatal("expected error when albums table is missing")
			}

			var exports int
			if err := db.QueryRow("SELECT COUNT(*) FROM exports").Scan(&exports); err != nil {
				t.Fatalf("failed to count exports: %v", err)
			}
			if exports != 0 {
				t.Errorf("expected rollback, found %d exports", exports)
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			repo := NewSnapshotRepository(setupTestDB(t))
			if _, err := repo.Get(ctx, "nonexistent-id"); !errors.Is(err, shared.ErrSnapshotNotFound) {
				t.Errorf("expected ErrSnapshotNotFound, got %v", err)
			}
		})

		t.Run("CorruptArtists", func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewSnapshotRepository(db)

			saved, err := repo.Save(ctx, testBundle(), []string{"liked"})
			if err != nil {
				t.Fatalf("failed to save snapshot: %v", err)
			}
			if _, err := db.Exec("UPDATE tracks SET artists = 'not json'"); err != nil {
				t.Fatalf("failed to corrupt tracks: %v", err)
			}

			if _, err := repo.Get(ctx, saved.ID()); err == nil {
				t.Fatal("expected decode error")
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			repo := NewSnapshotRepository(setupTestDB(t))
			if err := repo.Delete(ctx, "nonexistent-id"); !errors.Is(err, shared.ErrSnapshotNotFound) {
				t.Errorf("expected ErrSnapshotNotFound, got %v", err)
			}
		})
	})

	t.Run("List", func(t *testing.T) {
		t.Run("ClosedDatabase", func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewSnapshotRepository(db)
			db.Close()

			if _, err := repo.List(ctx); err == nil {
				t.Fatal("expected error with closed database")
			}
		})
	})
}

func TestArtistsEncoding(t *testing.T) {
	raw, err := encodeArtists(nil)
	if err != nil || raw != "[]" {
		t.Fatalf("encodeArtists(nil) = %q, %v", raw, err)
	}

	artists, err := decodeArtists("")
	if err != nil || artists == nil || len(artists) != 0 {
		t.Errorf("decodeArtists(\"\") = %v, %v", artists, err)
	}
}
