package cli

import (
	"fmt"
	"os"
	"strings"

	"issuetrack/internal/config"
	"issuetrack/internal/format"
	"issuetrack/internal/issueclient"
	"issuetrack/internal/logging"
	"issuetrack/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	APIURL     string
	ConfigFile string
	PrettyJSON bool
	Format     string

	cfg *config.Config
	log *logging.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "issuetrack",
		Short:         "Issue tracker CLI + TUI",
		SilenceUsage:  true,
		SilenceErrors: true, // RunE errors are printed by writeErr; main prints the rest
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  issuetrack

  # Scriptable commands
  issuetrack issues list --status open --sort priority

  # Direct issue lookup (shortcut for: issuetrack issues show <id>)
  issuetrack 42

  # Run the reference server with sample data
  issuetrack serve --memory
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.loadConfig(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return app.log.Close()
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api", "", "Issue store base URL (overrides api.base_url and $ISSUETRACK_API_BASE_URL)")
	cmd.PersistentFlags().StringVar(&app.ConfigFile, "config", envOr("ISSUETRACK_CONFIG", ""), "Config file (default: "+config.File()+")")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	app.Format = envOr("ISSUETRACK_FORMAT", "json")
	addEnumFlag(cmd, cmd.PersistentFlags(), &app.Format, "format", "Output format ("+strings.Join(format.Formats(), "|")+")", parseFormat, format.Formats())

	cmd.AddCommand(newIssuesCmd(app))
	cmd.AddCommand(newAssigneesCmd(app))
	cmd.AddCommand(newHealthCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// loadConfig resolves the layered config: defaults, file, ISSUETRACK_* env, then --api.
func (app *App) loadConfig(cmd *cobra.Command) error {
	v := config.NewViper(app.ConfigFile)
	if f := cmd.Root().PersistentFlags().Lookup("api"); f != nil {
		if err := v.BindPFlag("api.base_url", f); err != nil {
			return writeErr(cmd, err)
		}
	}
	if err := config.ReadInConfig(v); err != nil {
		return writeErr(cmd, err)
	}
	cfg, err := config.Load(v)
	if err != nil {
		return writeErr(cmd, err)
	}
	app.cfg = cfg
	return nil
}

func (app *App) config() *config.Config {
	if app.cfg == nil {
		app.cfg = config.Default()
	}
	return app.cfg
}

// logger opens the log file on first use. The terminal belongs to the command's
// output, so a log file that can't be opened just disables logging.
func (app *App) logger() *logging.Logger {
	if app.log != nil {
		return app.log
	}
	cfg := app.config()
	l, err := logging.New(cfg.Logging.LogFile(), cfg.Logging.Level)
	if err != nil {
		l = logging.Nop()
	}
	app.log = l
	return l
}

func (app *App) client() (*issueclient.Client, error) {
	cfg := app.config()
	return issueclient.New(cfg.API.BaseURL,
		issueclient.WithTimeout(cfg.API.Timeout()),
		issueclient.WithLogger(app.logger()),
		issueclient.WithUserAgent("issuetrack-cli"),
	)
}

func runTUI(cmd *cobra.Command, app *App) error {
	cfg := app.config()
	// The list view never times out; its fetches end when the server answers.
	c, err := issueclient.New(cfg.API.BaseURL,
		issueclient.WithLogger(app.logger()),
		issueclient.WithUserAgent("issuetrack-tui"),
	)
	if err != nil {
		return writeErr(cmd, err)
	}
	return tui.Run(tui.Options{Client: c, Config: cfg, Logger: app.logger()})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return reportedError{err}
}
