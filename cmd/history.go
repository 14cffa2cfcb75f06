package main

import (
	"context"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
)

// History lists recorded API requests, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if err := r.openDatabase(); err != nil {
		return err
	}

	entries, err := r.requests.List(map[string]any{
		"method": strings.ToUpper(cmd.String("method")),
		"failed": cmd.Bool("failed"),
		"limit":  cmd.Int("limit"),
	})
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		return r.writePlain("No requests recorded\n")
	}

	for _, e := range entries {
		mark := "✓"
		if e.Failed() {
			mark = "✗"
		}
		r.writePlain("%s %s %-6s %3d %s", mark, e.CreatedAt().Format(time.DateTime), e.Method(), e.StatusCode(), e.Path())
		if e.ErrorMessage() != "" {
			r.writePlain("  (%s)", e.ErrorMessage())
		}
		r.writePlain("\n")
	}

	if cmd.Bool("clear") {
		for _, e := range entries {
			if err := r.requests.Delete(e.ID()); err != nil {
				return err
			}
		}
		r.writePlainln("✓ Removed %d entries", len(entries))
	}
	return nil
}
