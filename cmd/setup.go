package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/spotify-backup/internal/shared"
)

// SetupConfig writes the built-in configuration to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if path == "" {
		path = "config.toml"
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	if err := r.writePlain("✓ Configuration written to %s\n", path); err != nil {
		return err
	}
	return r.writePlain("Set spotify.client_id to your application's id and register %s as its redirect URI.\n",
		r.cfg().Server.RedirectURI())
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config := r.cfg()

	if _, err := os.Stat(r.configPath); err != nil {
		r.logger.Info("config file not found, using defaults", "path", r.configPath)
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, _, err := r.openStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return r.writePlain("✓ Database ready at %s\n", config.Database.Path)
}
