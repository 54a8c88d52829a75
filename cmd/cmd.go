// submodule cmd contains command definitions
package main

import (
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/spotify-backup/internal/tasks"
)

// rootFlags are shared by every command.
func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
		},
	}
}

// authCommand runs the authorization flow on its own
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "Authorize with Spotify and print the access token",
		Action: r.Auth,
	}
}

// exportCommand fetches the library and writes it to disk
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Back up liked songs, liked albums and playlists",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "token",
				Usage: "Use an existing access token instead of authorizing",
			},
			&cli.StringFlag{
				Name:  "dump",
				Usage: "Comma-separated sections to fetch (liked, playlists)",
				Value: tasks.DefaultSections,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (json, txt, csv, markdown)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Playlists fetched concurrently (1-10)",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Store the export as a snapshot in the database",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Hide the progress spinner",
			},
		},
		Action: r.Export,
	}
}

// historyCommand manages stored snapshots
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect stored export snapshots",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List stored snapshots, newest first",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Re-export a stored snapshot",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (json, txt, csv, markdown)",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: stdout)",
					},
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "browse",
				Usage: "Browse a stored snapshot in the terminal",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "log-file",
						Usage: "Where to write logs while the browser owns the terminal",
						Value: "./tmp/spotify-backup-browse.log",
					},
				},
				Action: r.HistoryBrowse,
			},
			{
				Name:  "delete",
				Usage: "Delete a stored snapshot",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.HistoryDelete,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config.toml from the built-in defaults",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}
