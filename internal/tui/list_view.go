package tui

import (
	"fmt"
	"strconv"
	"strings"

	"issuetrack/internal/model"
	"issuetrack/internal/reconcile"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func listColumns(width int) []table.Column {
	const (
		idW       = 5
		statusW   = 12
		priorityW = 9
		assigneeW = 16
		updatedW  = 16
	)
	// Each column carries one cell of padding on both sides.
	titleW := width - (idW + statusW + priorityW + assigneeW + updatedW) - 12
	if titleW < 12 {
		titleW = 12
	}
	return []table.Column{
		{Title: "ID", Width: idW},
		{Title: "Title", Width: titleW},
		{Title: "Status", Width: statusW},
		{Title: "Priority", Width: priorityW},
		{Title: "Assignee", Width: assigneeW},
		{Title: "Updated", Width: updatedW},
	}
}

// syncTable copies the reconciler's current page into the table.
func (m *appModel) syncTable() {
	items := m.rec.Items()
	rows := make([]table.Row, 0, len(items))
	for _, is := range items {
		rows = append(rows, table.Row{
			strconv.Itoa(is.ID),
			is.Title,
			is.Status.Label(),
			is.Priority.Label(),
			emptyAsDash(model.Deref(is.Assignee)),
			formatTimestamp(is.UpdatedAt),
		})
	}
	m.table.SetRows(rows)
	// The table parks its cursor at -1 while empty.
	switch c := m.table.Cursor(); {
	case len(rows) == 0:
	case c < 0:
		m.table.SetCursor(0)
	case c >= len(rows):
		m.table.SetCursor(len(rows) - 1)
	}
}

func (m appModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filterFocus != filterNone {
		return m.updateFilterInput(msg)
	}

	k := m.listKeys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, k.Open):
		if is, ok := m.selectedIssue(); ok {
			return m.openDetail(is)
		}
		return m, nil
	case key.Matches(msg, k.New):
		return m.openCreateForm(viewList)
	case key.Matches(msg, k.Edit):
		if is, ok := m.selectedIssue(); ok {
			return m.openEditForm(is.ID, viewList)
		}
		return m, nil
	case key.Matches(msg, k.TitleFilter):
		m.filterFocus = filterTitle
		cmd := m.titleInput.Focus()
		return m, cmd
	case key.Matches(msg, k.AssigneeIn):
		m.filterFocus = filterAssignee
		cmd := m.assigneeInput.Focus()
		return m, cmd
	case key.Matches(msg, k.Status):
		f := m.rec.Filters()
		f.Status = nextStatus(f.Status)
		return m, m.fetch(m.rec.SetFilters(f))
	case key.Matches(msg, k.Priority):
		f := m.rec.Filters()
		f.Priority = nextPriority(f.Priority)
		return m, m.fetch(m.rec.SetFilters(f))
	case key.Matches(msg, k.Assignee):
		f := m.rec.Filters()
		f.Assignee = nextAssignee(f.Assignee, m.assignees)
		m.assigneeInput.SetValue(f.Assignee)
		return m, m.fetch(m.rec.SetFilters(f))
	case key.Matches(msg, k.Clear):
		m.titleInput.SetValue("")
		m.assigneeInput.SetValue("")
		return m, m.fetch(m.rec.ClearFilters())
	case key.Matches(msg, k.Sort):
		s := m.rec.Sort()
		s.Field = nextSortField(s.Field)
		return m, m.fetch(m.rec.SetSort(s))
	case key.Matches(msg, k.SortDir):
		s := m.rec.Sort()
		s.Descending = !s.Descending
		return m, m.fetch(m.rec.SetSort(s))
	case key.Matches(msg, k.PrevPage):
		p := m.rec.Page()
		if p.Index == 0 {
			return m, nil
		}
		return m, m.fetch(m.rec.SetPage(p.Index-1, p.Size))
	case key.Matches(msg, k.NextPage):
		p := m.rec.Page()
		if p.Index+1 >= p.TotalPages() {
			return m, nil
		}
		return m, m.fetch(m.rec.SetPage(p.Index+1, p.Size))
	case key.Matches(msg, k.Smaller), key.Matches(msg, k.Larger):
		dir := 1
		if key.Matches(msg, k.Smaller) {
			dir = -1
		}
		p := m.rec.Page()
		size := stepPageSize(p.Size, dir)
		if size == p.Size {
			return m, nil
		}
		// Stay on the page that holds the current first row.
		return m, m.fetch(m.rec.SetPage(p.Index*p.Size/size, size))
	case key.Matches(msg, k.Reload):
		return m, tea.Batch(m.fetch(m.rec.Refetch()), m.loadAssignees())
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// updateFilterInput feeds a key to the focused filter input. Every edit
// replaces the filters right away.
func (m appModel) updateFilterInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc, tea.KeyEnter, tea.KeyTab:
		m.filterFocus = filterNone
		m.titleInput.Blur()
		m.assigneeInput.Blur()
		return m, nil
	}

	in := &m.titleInput
	if m.filterFocus == filterAssignee {
		in = &m.assigneeInput
	}
	before := in.Value()
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	if in.Value() == before {
		return m, cmd
	}

	f := m.rec.Filters()
	if m.filterFocus == filterAssignee {
		f.Assignee = in.Value()
	} else {
		f.Title = in.Value()
	}
	return m, tea.Batch(cmd, m.fetch(m.rec.SetFilters(f)))
}

func (m appModel) viewList() string {
	w := m.contentWidth()
	var b strings.Builder

	p := m.rec.Page()
	s := m.rec.Sort()
	dir := "↑"
	if s.Descending {
		dir = "↓"
	}
	summary := fmt.Sprintf("%d total · page %d/%d · %d per page · sort %s %s",
		p.TotalItems, p.Index+1, p.TotalPages(), p.Size, s.Field, dir)
	b.WriteString(titleStyle.Render("Issues") + "  " + styleMuted().Render(summary))
	b.WriteString("\n")
	b.WriteString(m.viewFilterBar(w))
	b.WriteString("\n")
	b.WriteString(m.viewListStatus())
	b.WriteString("\n")

	if len(m.rec.Items()) == 0 && m.rec.Status().Phase == reconcile.Ready {
		b.WriteString(styleMuted().Render("No issues match."))
	} else {
		b.WriteString(m.table.View())
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.listKeys))
	return b.String()
}

func (m appModel) viewFilterBar(w int) string {
	f := m.rec.Filters()
	label := func(name string, focused bool) string {
		if focused {
			return focusLabelStyle.Render(name)
		}
		return labelStyle.Render(name)
	}
	inputW := max((w-60)/2, 14)
	status := "all"
	if f.Status != nil {
		status = f.Status.Label()
	}
	priority := "all"
	if f.Priority != nil {
		priority = f.Priority.Label()
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		label("Title ", m.filterFocus == filterTitle), renderInputLine(inputW, m.titleInput.View()), "  ",
		label("Assignee ", m.filterFocus == filterAssignee), renderInputLine(inputW, m.assigneeInput.View()), "  ",
		label("Status ", false), status, "  ",
		label("Priority ", false), priority,
	)
}

func (m appModel) viewListStatus() string {
	st := m.rec.Status()
	switch st.Phase {
	case reconcile.Loading:
		return m.spinner.View() + " Loading…"
	case reconcile.Failed:
		return failureStyle.Render("Could not load issues: " + st.Message)
	}
	return ""
}
