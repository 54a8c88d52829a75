package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/spotify-backup/internal/models"
)

// ViewState represents the current view of the [Browser].
type ViewState int

const (
	PlaylistListView ViewState = iota
	TrackListView
	AlbumListView
)

var _ tea.Model = (*Browser)(nil)

// Browser is a read-only terminal view of a stored snapshot.
//
// It lists the snapshot's playlists in stored order; enter opens a playlist's tracks and a switches to the saved albums.
type Browser struct {
	view         ViewState
	snapshot     *models.Snapshot
	bundle       *models.ExportBundle
	width        int
	height       int
	playlistList list.Model
	trackList    list.Model
	albumList    list.Model
	help         help.Model
	keys         keyMap
}

// NewBrowser creates a browser for a fully loaded snapshot.
func NewBrowser(snapshot *models.Snapshot) *Browser {
	bundle := snapshot.Bundle
	if bundle == nil {
		bundle = models.NewExportBundle()
	}

	created := snapshot.CreatedAt().Local().Format(timeLayout)

	return &Browser{
		view:         PlaylistListView,
		snapshot:     snapshot,
		bundle:       bundle,
		playlistList: newList(playlistItems(bundle), fmt.Sprintf("Playlists • %s", created)),
		trackList:    newList(nil, "Tracks"),
		albumList:    newList(albumItems(bundle.Albums), fmt.Sprintf("Saved Albums • %s", created)),
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// newList builds a list whose quit keys are handled by the browser.
func newList(items []list.Item, title string) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	return l
}

// Init implements [tea.Model]. The snapshot is already loaded, so there is nothing to fetch.
func (b *Browser) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the browser state.
func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.resize()
		return b, nil

	case tea.KeyMsg:
		current := b.current()
		if current.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, b.keys.quit):
			return b, tea.Quit
		case key.Matches(msg, b.keys.back) && b.view != PlaylistListView && current.FilterState() == list.Unfiltered:
			b.view = PlaylistListView
			return b, nil
		case key.Matches(msg, b.keys.enter) && b.view == PlaylistListView:
			b.openPlaylist()
			return b, nil
		case key.Matches(msg, b.keys.albums) && b.view == PlaylistListView:
			b.view = AlbumListView
			return b, nil
		}
	}

	return b.updateList(msg)
}

// View renders the current list with its key help.
func (b *Browser) View() string {
	switch b.view {
	case TrackListView:
		return b.render(b.trackList, b.keys.back, b.keys.quit)
	case AlbumListView:
		return b.render(b.albumList, b.keys.back, b.keys.quit)
	default:
		view := b.render(b.playlistList, b.keys.enter, b.keys.albums, b.keys.quit)
		if n := len(b.bundle.Degraded); n > 0 {
			view = styles.Warn(fmt.Sprintf("%d playlists were exported without tracks", n)) + "\n" + view
		}
		return view
	}
}

func (b *Browser) render(l list.Model, keys ...key.Binding) string {
	return fmt.Sprintf("%s\n\n%s", l.View(), b.help.ShortHelpView(keys))
}

func (b *Browser) current() *list.Model {
	switch b.view {
	case TrackListView:
		return &b.trackList
	case AlbumListView:
		return &b.albumList
	default:
		return &b.playlistList
	}
}

func (b *Browser) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	l := b.current()

	var cmd tea.Cmd
	*l, cmd = l.Update(msg)
	return b, cmd
}

func (b *Browser) openPlaylist() {
	item, ok := b.playlistList.SelectedItem().(playlistItem)
	if !ok {
		return
	}

	b.trackList = newList(trackItems(item.playlist.Tracks), fmt.Sprintf("Tracks in '%s'", item.playlist.Name))
	b.resize()
	b.view = TrackListView
}

func (b *Browser) resize() {
	w, h := max(b.width-4, 0), max(b.height-8, 0)
	b.playlistList.SetSize(w, h)
	b.trackList.SetSize(w, h)
	b.albumList.SetSize(w, h)
}
