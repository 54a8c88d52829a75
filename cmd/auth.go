package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// Auth runs the authorization flow and prints the access token.
//
// The token can be passed to `export --token` until it expires.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	if err := r.cfg().Validate(); err != nil {
		return err
	}

	token, err := r.authorizer().Token(ctx)
	if err != nil {
		return err
	}

	r.writeStatus(r.palette.OK("✓ Authorization successful"))
	return r.writePlain("%s\n", token)
}
