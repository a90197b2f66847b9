package cli

import (
	"github.com/spf13/cobra"
)

func newAssigneesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "assignees",
		Short: "List the distinct assignees known to the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			names, err := c.Assignees(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": names})
		},
	}
}

func newHealthCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the issue store is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			h, err := c.Health(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": h,
				"meta": map[string]any{"api": c.BaseURL()},
			})
		},
	}
}
