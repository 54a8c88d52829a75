package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/desertthunder/spotify-backup/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

// SnapshotTable renders snapshot summaries as a bordered table.
func SnapshotTable(snapshots []*models.Snapshot) string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "CREATED", "SECTIONS", "PLAYLISTS", "ALBUMS", "DEGRADED").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	for _, s := range snapshots {
		t.Row(
			s.ID(),
			s.CreatedAt().Local().Format(timeLayout),
			strings.Join(s.Sections, ","),
			strconv.Itoa(s.PlaylistCount),
			strconv.Itoa(s.AlbumCount),
			strconv.Itoa(s.DegradedCount),
		)
	}

	return t.Render()
}
