package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/scx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:    "scx",
		Usage:   "SoundCloud API client",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("SCX_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log requests and token exchanges",
			},
		},
		DisableSliceFlagSeparator: true,
		Before:                    runner.Before,
		After:                     runner.After,
		Commands:                  runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			runner.logger.Warn("not implemented")
			os.Exit(0)
		}
		runner.logger.Fatalf("application error: %v", err)
	}
}
