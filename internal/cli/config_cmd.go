package cli

import (
	"strings"

	"issuetrack/internal/config"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigInitCmd(app))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective config (defaults, file, env and flags merged) as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := config.Marshal(app.config())
			if err != nil {
				return writeErr(cmd, err)
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
}

func newConfigInitCmd(app *App) *cobra.Command {
	var path string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := strings.TrimSpace(path)
			if p == "" {
				p = config.File()
			}
			if err := config.WriteFile(p, config.Default(), force); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   map[string]any{"path": p},
				"_hints": []string{"issuetrack config show"},
			})
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "Where to write (default: "+config.File()+")")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
