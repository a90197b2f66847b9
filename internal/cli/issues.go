package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"issuetrack/internal/form"
	"issuetrack/internal/issueclient"
	"issuetrack/internal/model"
	"issuetrack/internal/reconcile"

	"github.com/spf13/cobra"
)

func newIssuesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "issues",
		Aliases: []string{"issue"},
		Short:   "Issue commands",
	}

	cmd.AddCommand(newIssuesListCmd(app))
	cmd.AddCommand(newIssuesShowCmd(app))
	cmd.AddCommand(newIssuesCreateCmd(app))
	cmd.AddCommand(newIssuesUpdateCmd(app))

	return cmd
}

func newIssuesListCmd(app *App) *cobra.Command {
	var (
		title    string
		assignee string
		status   model.Status
		priority model.Priority
		sortBy   model.SortField
		asc      bool
		desc     bool
		page     int
		pageSize int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List issues (filtered, sorted, paginated)",
		Args:  cobra.NoArgs,
		Example: strings.TrimSpace(`
  issuetrack issues list --status open
  issuetrack issues list --assignee alice --page 3 --page-size 20
  issuetrack issues list --sort priority --asc --format table
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if page < 1 {
				return writeErr(cmd, errors.New("--page must be >= 1"))
			}
			cfg := app.config()

			filters := model.FilterCriteria{Title: title, Assignee: assignee}
			if cmd.Flags().Changed("status") {
				filters.Status = model.StatusPtr(status)
			}
			if cmd.Flags().Changed("priority") {
				filters.Priority = model.PriorityPtr(priority)
			}
			sort := cfg.List.Sort()
			if cmd.Flags().Changed("sort") {
				sort.Field = sortBy
			}
			switch {
			case asc:
				sort.Descending = false
			case desc:
				sort.Descending = true
			}
			if pageSize <= 0 {
				pageSize = cfg.List.PageSize
			}

			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			r := reconcile.New(c,
				reconcile.WithFilters(filters),
				reconcile.WithSort(sort),
				reconcile.WithLogger(app.logger()),
			)
			res := r.SetPage(page-1, pageSize)(cmd.Context())
			r.Apply(res)
			if res.Err != nil {
				return writeErr(cmd, res.Err)
			}

			p := r.Page()
			return writeOut(cmd, app, map[string]any{
				"data": issueRows(r.Items()),
				"meta": map[string]any{
					"total":       p.TotalItems,
					"page":        p.Index + 1,
					"page_size":   p.Size,
					"total_pages": p.TotalPages(),
					"query":       issueclient.EncodeQuery(r.Query()).Encode(),
				},
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Title contains (case-insensitive)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee contains (case-insensitive)")
	addEnumFlag(cmd, cmd.Flags(), &status, "status", "Status ("+statusUsage()+")", model.ParseStatus, model.Statuses())
	addEnumFlag(cmd, cmd.Flags(), &priority, "priority", "Priority ("+priorityUsage()+")", model.ParsePriority, model.Priorities())
	addEnumFlag(cmd, cmd.Flags(), &sortBy, "sort", "Sort field ("+sortUsage()+"; default from list.sort_by)", model.ParseSortField, model.SortFields())
	cmd.Flags().BoolVar(&asc, "asc", false, "Sort ascending")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	cmd.Flags().IntVar(&page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Issues per page (default from list.page_size)")
	cmd.MarkFlagsMutuallyExclusive("asc", "desc")
	return cmd
}

func newIssuesShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "show <id>",
		Short:   "Show an issue",
		Aliases: []string{"get"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIssueID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			is, err := c.Get(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, issueError(err, id))
			}
			return writeOut(cmd, app, map[string]any{"data": is})
		},
	}
	return cmd
}

// draftFlags are the form fields exposed as flags on create and update.
type draftFlags struct {
	title       string
	description string
	status      string
	priority    string
	assignee    string
}

func (f *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Title (required, max 200 chars)")
	cmd.Flags().StringVar(&f.description, "description", "", "Description (markdown, max 2000 chars)")
	cmd.Flags().StringVar(&f.status, "status", "", "Status ("+statusUsage()+")")
	cmd.Flags().StringVar(&f.priority, "priority", "", "Priority ("+priorityUsage()+")")
	cmd.Flags().StringVar(&f.assignee, "assignee", "", "Assignee (max 100 chars)")
	_ = cmd.RegisterFlagCompletionFunc("status", completeTokens(model.Statuses()))
	_ = cmd.RegisterFlagCompletionFunc("priority", completeTokens(model.Priorities()))
}

// apply copies every flag the user set onto d. Unset flags leave d alone.
func (f *draftFlags) apply(cmd *cobra.Command, d *form.Draft) int {
	n := 0
	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
			n++
		}
	}
	set("title", &d.Title, f.title)
	set("description", &d.Description, f.description)
	set("status", &d.Status, f.status)
	set("priority", &d.Priority, f.priority)
	set("assignee", &d.Assignee, f.assignee)
	return n
}

func newIssuesCreateCmd(app *App) *cobra.Command {
	var flags draftFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an issue",
		Args:  cobra.NoArgs,
		Example: strings.TrimSpace(`
  issuetrack issues create --title "Login broken on Safari" --priority high --assignee alice
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := form.NewDraft()
			flags.apply(cmd, &d)
			if err := form.Validate(d); err != nil {
				return writeErr(cmd, err)
			}

			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			is, err := c.Create(cmd.Context(), form.ToCreatePayload(d))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": is,
				"_hints": []string{
					fmt.Sprintf("issuetrack issues show %d", is.ID),
					fmt.Sprintf("issuetrack issues update %d --status in_progress", is.ID),
				},
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newIssuesUpdateCmd(app *App) *cobra.Command {
	var flags draftFlags

	cmd := &cobra.Command{
		Use:     "update <id>",
		Short:   "Update an issue (only the flags you pass change)",
		Aliases: []string{"edit"},
		Args:    cobra.ExactArgs(1),
		Example: strings.TrimSpace(`
  issuetrack issues update 3 --status closed
  issuetrack issues update 3 --title "Rate limit the public API" --assignee bob
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIssueID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}

			// Same flow as the edit form: load, overlay, validate, send the whole draft.
			cur, err := c.Get(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, issueError(err, id))
			}
			d := form.DraftFromIssue(cur)
			if flags.apply(cmd, &d) == 0 {
				return writeErr(cmd, errors.New("nothing to update (pass at least one of --title, --description, --status, --priority, --assignee)"))
			}
			if err := form.Validate(d); err != nil {
				return writeErr(cmd, err)
			}

			is, err := c.Update(cmd.Context(), id, form.ToUpdatePayload(d))
			if err != nil {
				return writeErr(cmd, issueError(err, id))
			}
			return writeOut(cmd, app, map[string]any{"data": is})
		},
	}
	flags.register(cmd)
	return cmd
}

func parseIssueID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid issue id: %q", s)
	}
	return id, nil
}

func completeTokens[T ~string](values []T) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		out := make([]string, 0, len(values))
		for _, v := range values {
			out = append(out, string(v))
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

// issueRows renders as the compact list table; JSON and EDN see a plain slice.
type issueRows []model.Issue

func (r issueRows) Table() ([]string, [][]string) {
	rows := make([][]string, 0, len(r))
	for _, is := range r {
		rows = append(rows, []string{
			strconv.Itoa(is.ID),
			is.Title,
			string(is.Status),
			string(is.Priority),
			model.Deref(is.Assignee),
			shortTime(is.UpdatedAt),
		})
	}
	return []string{"ID", "TITLE", "STATUS", "PRIORITY", "ASSIGNEE", "UPDATED"}, rows
}

func shortTime(s string) string {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return s
	}
	return t.Local().Format("2006-01-02 15:04")
}
