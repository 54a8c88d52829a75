package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/spotify-backup/internal/shared"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(nil)})

	if err := newApp(runner).Run(ctx, os.Args); err != nil {
		stop()
		os.Exit(runner.fail(err))
	}
}

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "spotify-backup",
		Usage:    "Back up your Spotify playlists and liked library",
		Version:  "0.1.0",
		Flags:    rootFlags(),
		Before:   r.Before,
		Commands: r.register(),
	}
}

// fail reports err on the status writer and returns the process exit code.
func (r *Runner) fail(err error) int {
	if errors.Is(err, context.Canceled) {
		r.writeStatus(r.palette.Warn("interrupted"))
		return 130
	}

	r.writeStatus(r.palette.Err("✗ " + diagnose(err)))
	return 1
}

// diagnose names the failure kind so authorization and fetch failures read differently.
func diagnose(err error) string {
	for _, kind := range []error{shared.ErrAuthFailed, shared.ErrListenerBind, shared.ErrFetchFailed} {
		if errors.Is(err, kind) {
			return prefixed(kind, err)
		}
	}
	return err.Error()
}

func prefixed(kind, err error) string {
	msg := err.Error()
	if strings.HasPrefix(msg, kind.Error()) {
		return msg
	}
	return kind.Error() + ": " + msg
}
