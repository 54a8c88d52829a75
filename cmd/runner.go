package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/spotify-backup/internal/auth"
	"github.com/desertthunder/spotify-backup/internal/repositories"
	"github.com/desertthunder/spotify-backup/internal/shared"
	"github.com/desertthunder/spotify-backup/internal/ui"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	httpClient  *http.Client
	openBrowser shared.BrowserOpener
	logger      *log.Logger
	output      io.Writer
	status      io.Writer
	palette     *ui.Palette
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	HTTPClient  *http.Client
	OpenBrowser shared.BrowserOpener
	Logger      *log.Logger
	Output      io.Writer // command results
	Status      io.Writer // progress and diagnostics
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Status == nil {
		opts.Status = os.Stderr
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		httpClient:  opts.HTTPClient,
		openBrowser: opts.OpenBrowser,
		logger:      opts.Logger,
		output:      opts.Output,
		status:      opts.Status,
		palette:     ui.Styles(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		authCommand, exportCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration named by --config and applies --verbose.
//
// A config passed through [RunnerOpts] is kept as is.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if r.config != nil {
		return ctx, nil
	}

	config, err := shared.LoadOrDefault(r.configPath)
	if err != nil {
		return ctx, err
	}
	r.config = config
	r.logger.Debug("loaded configuration", "path", r.configPath)

	return ctx, nil
}

func (r *Runner) cfg() *shared.Config {
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}
	return r.config
}

func (r *Runner) authorizer() *auth.Authorizer {
	return auth.NewAuthorizer(r.cfg(), auth.AuthorizerOpts{
		HTTPClient:  r.httpClient,
		OpenBrowser: r.openBrowser,
		Out:         r.status,
		Logger:      shared.WithLogger(r.logger, "component", "auth"),
	})
}

// openStore opens the configured database with migrations applied.
func (r *Runner) openStore(ctx context.Context) (*sql.DB, *repositories.SnapshotRepository, error) {
	config := r.cfg()

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, repositories.NewSnapshotRepository(db), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// writeStatus writes a diagnostic line to the status writer.
func (r *Runner) writeStatus(line string) {
	fmt.Fprintln(r.status, line)
}
