package tui

import (
	"context"
	"time"

	"issuetrack/internal/config"
	"issuetrack/internal/logging"
	"issuetrack/internal/model"
	"issuetrack/internal/reconcile"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type appModel struct {
	api issueAPI
	log *logging.Logger

	width  int
	height int

	view view

	// List view. rec owns filters, sort, paging and the displayed page.
	rec           *reconcile.Reconciler
	table         table.Model
	spinner       spinner.Model
	filterFocus   filterFocus
	titleInput    textinput.Model
	assigneeInput textinput.Model
	assignees     []string

	// Detail view.
	detail        *model.Issue
	detailLoading bool
	detailPort    viewport.Model

	// Form view. formReturn is where esc goes.
	form       issueForm
	formReturn view

	help       help.Model
	listKeys   listKeyMap
	detailKeys detailKeyMap
	formKeys   formKeyMap

	notifyAfter    time.Duration
	minibufferText string
	minibufferSeq  int
}

const (
	// Header, filter bar, status line, help and minibuffer around the table.
	listChromeLines = 8
	maxContentW     = 120
)

func newAppModel(api issueAPI, cfg *config.Config, log *logging.Logger) appModel {
	opts := []reconcile.Option{
		reconcile.WithSort(cfg.List.Sort()),
		reconcile.WithPageSize(cfg.List.PageSize),
		reconcile.WithLogger(log),
	}
	if cfg.List.DiscardStaleResponses {
		opts = append(opts, reconcile.WithStaleGuard())
	}

	m := appModel{
		api:         api,
		log:         log,
		view:        viewList,
		rec:         reconcile.New(api, opts...),
		help:        help.New(),
		listKeys:    newListKeyMap(),
		detailKeys:  newDetailKeyMap(),
		formKeys:    newFormKeyMap(),
		notifyAfter: cfg.TUI.NotifyDuration(),
		detailPort:  viewport.New(80, 20),
	}

	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	m.spinner.Style = lipgloss.NewStyle().Foreground(colorAccent)

	m.titleInput = newFilterInput("Search title")
	m.assigneeInput = newFilterInput("Search assignee")

	st := table.DefaultStyles()
	st.Header = st.Header.Bold(true).Foreground(colorMuted).BorderBottom(true).BorderForeground(colorMuted)
	st.Selected = st.Selected.Bold(true).Foreground(colorSurfaceFg).Background(colorSelectBg)
	m.table = table.New(
		table.WithColumns(listColumns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
		table.WithStyles(st),
	)

	m.form = newIssueForm()
	return m
}

func newFilterInput(placeholder string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = ""
	in.CharLimit = model.MaxTitleLen
	in.Width = 24
	in.Cursor.SetMode(cursor.CursorStatic)
	return in
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.fetch(m.rec.Refetch()), m.loadAssignees())
}

// fetch runs a reconciler fetch off the UI loop; the result comes back as a
// listLoadedMsg for Apply.
func (m appModel) fetch(f reconcile.Fetch) tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return listLoadedMsg{res: f(context.Background())} },
		m.spinner.Tick,
	)
}

func (m appModel) loadAssignees() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		names, err := api.Assignees(context.Background())
		return assigneesLoadedMsg{names: names, err: err}
	}
}

func (m appModel) loadIssue(id int, forEdit bool) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		is, err := api.Get(context.Background(), id)
		return issueLoadedMsg{id: id, issue: is, err: err, forEdit: forEdit}
	}
}

// showMinibuffer sets a transient notification and schedules its removal.
func (m *appModel) showMinibuffer(text string) tea.Cmd {
	m.minibufferText = text
	m.minibufferSeq++
	seq := m.minibufferSeq
	if m.notifyAfter <= 0 {
		return nil
	}
	return tea.Tick(m.notifyAfter, func(time.Time) tea.Msg { return minibufferClearMsg{seq: seq} })
}

func (m appModel) selectedIssue() (model.Issue, bool) {
	items := m.rec.Items()
	i := m.table.Cursor()
	if i < 0 || i >= len(items) {
		return model.Issue{}, false
	}
	return items[i], true
}

func (m appModel) contentWidth() int {
	w := m.width
	if w <= 0 {
		w = 80
	}
	if w > maxContentW {
		w = maxContentW
	}
	return w
}

func (m *appModel) resize() {
	w := m.contentWidth()
	m.table.SetColumns(listColumns(w))
	m.table.SetWidth(w)
	h := m.height - listChromeLines
	if h < 3 {
		h = 3
	}
	m.table.SetHeight(h)
	m.help.Width = w
	m.detailPort.Width = w
	m.detailPort.Height = max(m.height-4, 3)
	m.form.resize(w)
}
