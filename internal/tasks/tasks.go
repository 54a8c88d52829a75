// package tasks implements the library fetch that turns API pages into an export bundle.
//
// The core abstraction is LibraryFetcher, which walks the liked library and the playlist index.
// Operations emit progress updates via channels for non-blocking status reporting to the CLI layer.
package tasks

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/spotify-backup/internal/services"
	"github.com/desertthunder/spotify-backup/internal/shared"
)

const (
	SectionLiked     = "liked"
	SectionPlaylists = "playlists"

	DefaultSections = SectionPlaylists + "," + SectionLiked
	maxWorkers      = 10
)

// Sections selects which parts of the library are fetched.
type Sections struct {
	Liked     bool
	Playlists bool
}

// ParseSections parses a comma-separated list such as "playlists,liked".
func ParseSections(dump string) (Sections, error) {
	var s Sections
	for _, part := range strings.Split(dump, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case SectionLiked:
			s.Liked = true
		case SectionPlaylists:
			s.Playlists = true
		case "":
		default:
			return Sections{}, fmt.Errorf("%w: unknown section %q (expected liked, playlists)", shared.ErrInvalidArgument, part)
		}
	}

	if s.Empty() {
		return Sections{}, fmt.Errorf("%w: no sections selected", shared.ErrMissingArgument)
	}
	return s, nil
}

// Empty reports whether no section is selected.
func (s Sections) Empty() bool {
	return !s.Liked && !s.Playlists
}

// Names returns the selected section names in fetch order.
func (s Sections) Names() []string {
	var names []string
	if s.Liked {
		names = append(names, SectionLiked)
	}
	if s.Playlists {
		names = append(names, SectionPlaylists)
	}
	return names
}

func (s Sections) String() string {
	return strings.Join(s.Names(), ",")
}

// SectionsFromNames is the inverse of [Sections.Names].
func SectionsFromNames(names []string) Sections {
	return Sections{
		Liked:     slices.Contains(names, SectionLiked),
		Playlists: slices.Contains(names, SectionPlaylists),
	}
}

// PlaylistTrackFetchError reports a playlist whose tracks could not be fetched.
//
// The playlist is kept in the bundle with an empty track list.
type PlaylistTrackFetchError struct {
	Index int
	Name  string
	Err   error
}

func (e *PlaylistTrackFetchError) Error() string {
	return fmt.Sprintf("%v: %q: %v", shared.ErrPlaylistDegraded, e.Name, e.Err)
}

func (e *PlaylistTrackFetchError) Unwrap() []error {
	return []error{shared.ErrPlaylistDegraded, e.Err}
}

// FetcherOpts configures a [LibraryFetcher].
type FetcherOpts struct {
	Workers int // concurrent playlist track fetches, clamped to 1..10
	Logger  *log.Logger
}

// LibraryFetcher assembles an export bundle from a [services.Fetcher].
type LibraryFetcher struct {
	api     services.Fetcher
	workers int
	logger  *log.Logger
}

// NewLibraryFetcher creates a fetcher reading from api.
func NewLibraryFetcher(api services.Fetcher, opts FetcherOpts) *LibraryFetcher {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Workers > maxWorkers {
		opts.Workers = maxWorkers
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	return &LibraryFetcher{
		api:     api,
		workers: opts.Workers,
		logger:  opts.Logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (f *LibraryFetcher) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
