package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/spotify-backup/internal/formatter"
	"github.com/desertthunder/spotify-backup/internal/shared"
	"github.com/desertthunder/spotify-backup/internal/ui"
)

// snapshotSummary is the JSON shape of a listed snapshot.
type snapshotSummary struct {
	ID        string   `json:"id"`
	CreatedAt string   `json:"created_at"`
	Sections  []string `json:"sections"`
	Playlists int      `json:"playlists"`
	Albums    int      `json:"albums"`
	Degraded  int      `json:"degraded"`
}

// HistoryList prints stored snapshots, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	db, repo, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	snapshots, err := repo.List(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		summaries := make([]snapshotSummary, 0, len(snapshots))
		for _, s := range snapshots {
			summaries = append(summaries, snapshotSummary{
				ID:        s.ID(),
				CreatedAt: s.CreatedAt().Format("2006-01-02T15:04:05Z07:00"),
				Sections:  s.Sections,
				Playlists: s.PlaylistCount,
				Albums:    s.AlbumCount,
				Degraded:  s.DegradedCount,
			})
		}
		return r.writeJSON(summaries, true)
	}

	if len(snapshots) == 0 {
		return r.writePlain("%s\n", r.palette.Help("No snapshots stored. Run `export --save` to create one."))
	}

	return r.writePlain("%s\n", ui.SnapshotTable(snapshots))
}

// HistoryShow re-exports a stored snapshot to a file or stdout.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: snapshot id", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	db, repo, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	snapshot, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if output := cmd.String("output"); output != "" {
		files, err := formatter.Write(snapshot.Bundle, format, output)
		if err != nil {
			return err
		}
		r.writeStatus(r.palette.OK("✓ Snapshot written to " + strings.Join(files, ", ")))
		return nil
	}

	data, err := formatter.Render(snapshot.Bundle, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// HistoryBrowse opens a stored snapshot in the interactive browser.
//
// The snapshot is loaded before the terminal is taken over, so a bad id fails like the other history commands.
func (r *Runner) HistoryBrowse(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: snapshot id", shared.ErrMissingArgument)
	}

	db, repo, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	snapshot, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}

	fileLogger, logFile, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer logFile.Close()

	previous := r.logger
	r.logger = fileLogger
	defer func() { r.logger = previous }()

	r.logger.Info("browsing snapshot", "id", snapshot.ID(), "playlists", snapshot.PlaylistCount)

	p := tea.NewProgram(ui.NewBrowser(snapshot), tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running browser: %w", err)
	}
	return nil
}

// HistoryDelete removes a stored snapshot.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: snapshot id", shared.ErrMissingArgument)
	}

	db, repo, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repo.Delete(ctx, id); err != nil {
		return err
	}

	r.writeStatus(r.palette.OK("✓ Deleted snapshot " + id))
	return nil
}
