package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/scx/internal/shared"
	"github.com/desertthunder/scx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive playlist browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Logs would corrupt the TUI; send them to a file unless one is configured.
	if r.logFile == nil {
		fileLogger, f, err := shared.NewFileLogger("./tmp/scx-tui.log")
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		r.SetLogger(fileLogger)
		r.logFile = f
	}

	svc, err := r.connectService(ctx)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, svc, cmd.String("dir"))
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	if err := model.Err(); err != nil {
		return err
	}
	return nil
}
