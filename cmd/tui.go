package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/froydnj/contentdir/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive library browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	db, err := r.openLibrary(config)
	if err != nil {
		return err
	}
	defer db.Close()

	service, _, err := r.buildService(ctx, db, config, nopBroadcaster{})
	if err != nil {
		return err
	}
	defer service.Notifier().Stop()

	model := ui.NewModel(ctx, service)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
