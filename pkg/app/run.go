package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-kit/log/level"
)

// Run starts the interactive client and blocks until the user quits.
// A saved session, when present, overrides the configured defaults.
func Run(opts Options) error {
	if opts.SessionFile != "" {
		if saved, err := LoadSession(opts.SessionFile); err == nil {
			opts.Initial = saved
		}
	}

	m := NewModel(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// The debounce scheduler fires on a timer goroutine; it re-enters
	// the update loop through program.Send.
	m.sender.fn = p.Send

	level.Info(m.logger).Log("msg", "starting interactive client")
	_, err := p.Run()
	return err
}
