// package formatter provides functions to export library data to various formats (JSON, tab-separated text, CSV, Markdown)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/spotify-backup/internal/models"
	"github.com/desertthunder/spotify-backup/internal/shared"
)

// Format is an export file format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatText     Format = "txt"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatText, FormatCSV, FormatMarkdown}

// ParseFormat validates a format name. "text", "tsv" and "md" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "txt", "text", "tsv":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q (expected json, txt, csv, markdown)", shared.ErrInvalidFlag, s)
	}
}

// ExportToJSON converts a bundle to indented JSON: {"playlists": [...], "albums": [...]}
func ExportToJSON(bundle *models.ExportBundle) ([]byte, error) {
	return shared.MarshalJSON(bundle, true)
}

// ExportToText converts a bundle to the tab-separated layout.
//
// Each playlist is its name on one line, one name/artists/album/uri/release_date line per track,
// then an empty line. Lines end with CRLF. Albums are not included.
func ExportToText(bundle *models.ExportBundle) []byte {
	var buf bytes.Buffer

	for _, playlist := range bundle.Playlists {
		buf.WriteString(playlist.Name + "\r\n")
		for _, track := range playlist.Tracks {
			fmt.Fprintf(&buf, "%s\t%s\t%s\t%s\t%s\r\n",
				track.Name,
				shared.JoinArtists(track.Artists),
				track.Album,
				track.URI,
				track.ReleaseDate,
			)
		}
		buf.WriteString("\r\n")
	}

	return buf.Bytes()
}

// ExportToCSV converts all playlist tracks to CSV with columns: Playlist, Name, Artists, Album, URI, Release Date
func ExportToCSV(bundle *models.ExportBundle) ([]byte, error) {
	rows := [][]string{{"Playlist", "Name", "Artists", "Album", "URI", "Release Date"}}
	for _, playlist := range bundle.Playlists {
		for _, track := range playlist.Tracks {
			rows = append(rows, []string{
				playlist.Name,
				track.Name,
				shared.JoinArtists(track.Artists),
				track.Album,
				track.URI,
				track.ReleaseDate,
			})
		}
	}
	return writeCSV(rows)
}

// AlbumsToCSV converts liked albums to CSV with columns: Name, Artists, URI, Release Date, Added At
func AlbumsToCSV(albums []models.Album) ([]byte, error) {
	rows := [][]string{{"Name", "Artists", "URI", "Release Date", "Added At"}}
	for _, album := range albums {
		rows = append(rows, []string{
			album.Name,
			shared.JoinArtists(album.Artists),
			album.URI,
			album.ReleaseDate,
			album.AddedAt,
		})
	}
	return writeCSV(rows)
}

func writeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write CSV records: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToMarkdown converts a bundle to a Markdown document with one section per playlist.
func ExportToMarkdown(bundle *models.ExportBundle) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Library Export\n\n")
	fmt.Fprintf(&buf, "**Playlists**: %d\n", len(bundle.Playlists))
	fmt.Fprintf(&buf, "**Tracks**: %d\n", bundle.TrackCount())
	fmt.Fprintf(&buf, "**Albums**: %d\n\n", len(bundle.Albums))

	for _, playlist := range bundle.Playlists {
		fmt.Fprintf(&buf, "## %s\n\n", playlist.Name)
		if len(playlist.Tracks) == 0 {
			buf.WriteString("_No tracks_\n\n")
			continue
		}
		for i, track := range playlist.Tracks {
			albumPart := ""
			if track.Album != "" {
				albumPart = fmt.Sprintf(" (%s)", track.Album)
			}
			fmt.Fprintf(&buf, "%d. %s - %s%s\n", i+1, shared.JoinArtists(track.Artists), track.Name, albumPart)
		}
		buf.WriteString("\n")
	}

	if len(bundle.Albums) > 0 {
		buf.WriteString("## Liked Albums\n\n")
		for i, album := range bundle.Albums {
			fmt.Fprintf(&buf, "%d. %s - %s [%s]\n", i+1, shared.JoinArtists(album.Artists), album.Name, album.ReleaseDate)
		}
	}

	return buf.Bytes()
}

// Render returns the single-document form of a bundle. For CSV only the tracks table is rendered.
func Render(bundle *models.ExportBundle, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ExportToJSON(bundle)
	case FormatText:
		return ExportToText(bundle), nil
	case FormatCSV:
		return ExportToCSV(bundle)
	case FormatMarkdown:
		return ExportToMarkdown(bundle), nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidFlag, format)
	}
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile string
	AlbumsFile string
}

// WriteCSVExport writes {base}_tracks.csv and, when the bundle has albums, {base}_albums.csv.
//
// The base is path without its extension.
func WriteCSVExport(bundle *models.ExportBundle, path string) (*CSVExportResult, error) {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	result := &CSVExportResult{TracksFile: base + "_tracks.csv"}

	tracks, err := ExportToCSV(bundle)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}
	if err := os.WriteFile(result.TracksFile, tracks, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	if len(bundle.Albums) == 0 {
		return result, nil
	}

	albums, err := AlbumsToCSV(bundle.Albums)
	if err != nil {
		return nil, fmt.Errorf("failed to generate albums CSV: %w", err)
	}
	result.AlbumsFile = base + "_albums.csv"
	if err := os.WriteFile(result.AlbumsFile, albums, 0644); err != nil {
		return nil, fmt.Errorf("failed to write albums CSV file: %w", err)
	}

	return result, nil
}

// Write exports the bundle to path in the given format and returns the files it created.
func Write(bundle *models.ExportBundle, format Format, path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: output path", shared.ErrMissingArgument)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if format == FormatCSV {
		res, err := WriteCSVExport(bundle, path)
		if err != nil {
			return nil, err
		}
		files := []string{res.TracksFile}
		if res.AlbumsFile != "" {
			files = append(files, res.AlbumsFile)
		}
		return files, nil
	}

	data, err := Render(bundle, format)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return []string{path}, nil
}
