package tasks

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/spotify-backup/internal/models"
	"github.com/desertthunder/spotify-backup/internal/services"
)

func pageParams(limit int) url.Values {
	return url.Values{"limit": {strconv.Itoa(limit)}}
}

// Fetch loads the requested sections and returns them as a bundle.
//
// Liked songs come first as a synthetic playlist, followed by the user's playlists in provider order.
// A playlist whose tracks cannot be fetched is kept with no tracks and recorded in
// [models.ExportBundle.Degraded]. Any other fetch failure aborts the run.
func (f *LibraryFetcher) Fetch(ctx context.Context, sections Sections, progress chan<- ProgressUpdate) (*models.ExportBundle, error) {
	bundle := models.NewExportBundle()

	if sections.Liked {
		liked, albums, err := f.fetchLiked(ctx, progress)
		if err != nil {
			return nil, err
		}
		bundle.Playlists = append(bundle.Playlists, liked)
		bundle.Albums = albums
	}

	if sections.Playlists {
		playlists, degraded, err := f.fetchPlaylists(ctx, len(bundle.Playlists), progress)
		if err != nil {
			return nil, err
		}
		bundle.Playlists = append(bundle.Playlists, playlists...)
		bundle.Degraded = degraded
	}

	f.sendProgress(progress, fetchDoneUpdate(len(bundle.Playlists), len(bundle.Albums)))
	return bundle, nil
}

func (f *LibraryFetcher) fetchLiked(ctx context.Context, progress chan<- ProgressUpdate) (models.Playlist, []models.Album, error) {
	f.sendProgress(progress, likedTracksUpdate())

	items, err := f.api.List(ctx, "me/tracks", pageParams(services.LibraryPageSize))
	if err != nil {
		return models.Playlist{}, nil, fmt.Errorf("liked tracks: %w", err)
	}
	tracks, err := services.TracksFromItems(items)
	if err != nil {
		return models.Playlist{}, nil, fmt.Errorf("liked tracks: %w", err)
	}

	f.sendProgress(progress, likedAlbumsUpdate(len(tracks)))

	items, err = f.api.List(ctx, "me/albums", pageParams(services.LibraryPageSize))
	if err != nil {
		return models.Playlist{}, nil, fmt.Errorf("liked albums: %w", err)
	}
	albums, err := services.AlbumsFromItems(items)
	if err != nil {
		return models.Playlist{}, nil, fmt.Errorf("liked albums: %w", err)
	}

	f.logger.Info("loaded liked library", "tracks", len(tracks), "albums", len(albums))

	return models.Playlist{Name: models.LikedSongsName, Tracks: tracks}, albums, nil
}

func (f *LibraryFetcher) fetchPlaylists(ctx context.Context, offset int, progress chan<- ProgressUpdate) ([]models.Playlist, []models.DegradedPlaylist, error) {
	f.sendProgress(progress, playlistIndexUpdate())

	items, err := f.api.List(ctx, "me/playlists", pageParams(services.LibraryPageSize))
	if err != nil {
		return nil, nil, fmt.Errorf("playlists: %w", err)
	}
	refs, err := services.DecodeAll[services.SpotifySimplePlaylist](items)
	if err != nil {
		return nil, nil, fmt.Errorf("playlists: %w", err)
	}

	f.logger.Info("found playlists", "count", len(refs))
	f.sendProgress(progress, foundPlaylistsUpdate(len(refs)))

	playlists := make([]models.Playlist, len(refs))
	failures := make([]*PlaylistTrackFetchError, len(refs))
	var done atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)

	for i, ref := range refs {
		g.Go(func() error {
			tracks, err := f.playlistTracks(gctx, ref)
			step := int(done.Add(1))

			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}

				failures[i] = &PlaylistTrackFetchError{Index: offset + i, Name: ref.Name, Err: err}
				f.logger.Error("error loading tracks", "playlist", ref.Name, "err", err)
				f.sendProgress(progress, playlistDegradedUpdate(step, len(refs), failures[i]))
				tracks = []models.Track{}
			} else {
				f.logger.Debug("loaded playlist", "playlist", ref.Name, "tracks", len(tracks))
				f.sendProgress(progress, playlistTracksUpdate(step, len(refs), ref.Name, len(tracks)))
			}

			playlists[i] = models.Playlist{ID: ref.ID, Name: ref.Name, Tracks: tracks}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var degraded []models.DegradedPlaylist
	for _, failure := range failures {
		if failure != nil {
			degraded = append(degraded, models.DegradedPlaylist{
				Index:  failure.Index,
				Name:   failure.Name,
				Reason: failure.Err.Error(),
			})
		}
	}

	return playlists, degraded, nil
}

func (f *LibraryFetcher) playlistTracks(ctx context.Context, ref services.SpotifySimplePlaylist) ([]models.Track, error) {
	items, err := f.api.List(ctx, ref.TracksPath(), pageParams(services.PlaylistPageSize))
	if err != nil {
		return nil, err
	}
	return services.TracksFromItems(items)
}
