package commands

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/foliolab/folio/internal/app"
	"github.com/foliolab/folio/internal/authbridge"
)

func bridgeCommand() *cli.Command {
	return &cli.Command{
		Name:   "bridge",
		Usage:  "run embedded under a host, relaying auth state over stdio",
		Action: bridgeAction,
	}
}

func bridgeAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadAndInstrument(cmd)
	if err != nil {
		return err
	}

	// stdout carries the message stream; all logging goes to stderr.
	port := authbridge.NewStreamPort(os.Stdin, os.Stdout, cfg.Bridge.Origin)
	return app.RunBridge(ctx, cfg, port)
}
