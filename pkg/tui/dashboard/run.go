package dashboard

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/fedash/pkg/workflow"
)

// Run launches the dashboard and blocks until the user quits or ctx is done.
func Run(ctx context.Context, c *workflow.Controller, opts ...Option) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := New(ctx, c, opts...)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	m.close()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
