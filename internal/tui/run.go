package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the dashboard in the alternate screen and blocks until it exits.
func Run(ctx context.Context, deps Deps) error {
	p := tea.NewProgram(NewModel(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
