// Package tui is the interactive issue browser: a filterable, sortable, paged
// list, an issue detail view and a create/edit form.
package tui

import (
	"errors"

	"issuetrack/internal/config"
	"issuetrack/internal/issueclient"
	"issuetrack/internal/logging"

	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	Client *issueclient.Client
	Config *config.Config
	Logger *logging.Logger
}

func Run(opts Options) error {
	if opts.Client == nil {
		return errors.New("tui: client is nil")
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	applyThemePreference()
	applyColorProfilePreference()

	m := newAppModel(opts.Client, opts.Config, opts.Logger)
	opts.Logger.Info("tui started", "api", opts.Client.BaseURL())
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
