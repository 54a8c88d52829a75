package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/spotify-backup/internal/formatter"
	"github.com/desertthunder/spotify-backup/internal/models"
	"github.com/desertthunder/spotify-backup/internal/services"
	"github.com/desertthunder/spotify-backup/internal/shared"
	"github.com/desertthunder/spotify-backup/internal/tasks"
	"github.com/desertthunder/spotify-backup/internal/ui"
)

// exportOpts are the resolved export flags, falling back to the [export] config section.
type exportOpts struct {
	token    string
	sections tasks.Sections
	format   formatter.Format
	output   string
	workers  int
	save     bool
	quiet    bool
}

func (r *Runner) exportOpts(cmd *cli.Command) (exportOpts, error) {
	config := r.cfg().Export

	dump := config.Dump
	if cmd.IsSet("dump") || dump == "" {
		dump = cmd.String("dump")
	}
	sections, err := tasks.ParseSections(dump)
	if err != nil {
		return exportOpts{}, err
	}

	formatName := config.Format
	if cmd.IsSet("format") || formatName == "" {
		formatName = cmd.String("format")
	}
	if formatName == "" {
		formatName = string(formatter.FormatJSON)
	}
	format, err := formatter.ParseFormat(formatName)
	if err != nil {
		return exportOpts{}, err
	}

	output := config.File
	if cmd.IsSet("output") || output == "" {
		output = cmd.String("output")
	}
	if output == "" {
		return exportOpts{}, fmt.Errorf("%w: --output", shared.ErrMissingArgument)
	}

	workers := config.Workers
	if cmd.IsSet("workers") {
		workers = int(cmd.Int("workers"))
	}

	return exportOpts{
		token:    strings.TrimSpace(cmd.String("token")),
		sections: sections,
		format:   format,
		output:   output,
		workers:  workers,
		save:     cmd.Bool("save"),
		quiet:    cmd.Bool("quiet"),
	}, nil
}

// Export fetches the selected sections and writes them in the chosen format.
//
// With --token the authorization flow is skipped. Playlists that could not be fetched are exported empty
// and reported as warnings; any other failure stops the export before anything is written.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	opts, err := r.exportOpts(cmd)
	if err != nil {
		return err
	}

	client, err := r.client(ctx, opts.token)
	if err != nil {
		return err
	}

	fetcher := tasks.NewLibraryFetcher(client, tasks.FetcherOpts{
		Workers: opts.workers,
		Logger:  shared.WithLogger(r.logger, "component", "fetch"),
	})

	bundle, err := r.fetch(ctx, fetcher, opts)
	if err != nil {
		return err
	}

	files, err := formatter.Write(bundle, opts.format, opts.output)
	if err != nil {
		return err
	}

	r.logger.Info("export written", "format", opts.format, "files", strings.Join(files, ", "))

	if opts.save {
		if err := r.saveSnapshot(ctx, bundle, opts.sections); err != nil {
			return err
		}
	}

	r.reportExport(bundle, files)
	return nil
}

func (r *Runner) client(ctx context.Context, token string) (*services.Client, error) {
	a := r.authorizer()
	if token != "" {
		r.logger.Debug("using access token from flag")
		return services.NewClient(token, a.ClientOpts()), nil
	}

	if err := r.cfg().Validate(); err != nil {
		return nil, err
	}
	return a.Authorize(ctx)
}

// fetch runs the fetcher while a spinner consumes its progress updates.
func (r *Runner) fetch(ctx context.Context, fetcher *tasks.LibraryFetcher, opts exportOpts) (*models.ExportBundle, error) {
	progress := make(chan tasks.ProgressUpdate, 32)
	spinner := ui.NewProgress(r.status, !opts.quiet)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		spinner.Consume(progress)
	}()

	bundle, err := fetcher.Fetch(ctx, opts.sections, progress)
	close(progress)
	wg.Wait()

	return bundle, err
}

func (r *Runner) saveSnapshot(ctx context.Context, bundle *models.ExportBundle, sections tasks.Sections) error {
	db, repo, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	snapshot, err := repo.Save(ctx, bundle, sections.Names())
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	r.writeStatus(r.palette.OK("✓ Snapshot saved: " + snapshot.ID()))
	return nil
}

func (r *Runner) reportExport(bundle *models.ExportBundle, files []string) {
	for _, d := range bundle.Degraded {
		r.writeStatus(r.palette.Warn(fmt.Sprintf("%v: %q exported without tracks: %s", shared.ErrPlaylistDegraded, d.Name, d.Reason)))
	}

	r.writeStatus(r.palette.OK(fmt.Sprintf(
		"✓ Exported %d playlists (%d tracks) and %d albums to %s",
		len(bundle.Playlists),
		bundle.TrackCount(),
		len(bundle.Albums),
		strings.Join(files, ", "),
	)))
}
