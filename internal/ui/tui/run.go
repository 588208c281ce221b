package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows app until the user quits or ctx is done. The app's feed is
// closed on return, so watchers writing to it never wait on a view that
// has gone away.
func Run(ctx context.Context, app App, opts ...tea.ProgramOption) error {
	if app.feed != nil {
		defer app.feed.Close()
	}

	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	if _, err := tea.NewProgram(app, opts...).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
