package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"issuetrack/internal/form"
	"issuetrack/internal/model"
	"issuetrack/internal/reconcile"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type formField int

const (
	fieldTitle formField = iota
	fieldDescription
	fieldStatus
	fieldPriority
	fieldAssignee
	fieldSubmit
	formFieldCount
)

func (f formField) next() formField { return (f + 1) % formFieldCount }
func (f formField) prev() formField { return (f + formFieldCount - 1) % formFieldCount }

// issueForm is the create/edit screen. editID is 0 when creating.
type issueForm struct {
	editID      int
	loading     bool
	submitting  bool
	title       textinput.Model
	description textarea.Model
	assignee    textinput.Model
	status      model.Status
	priority    model.Priority
	focus       formField
	errs        form.ValidationErrors
}

func newIssueForm() issueForm {
	f := issueForm{}

	f.title = textinput.New()
	f.title.Placeholder = "Short summary"
	f.title.Prompt = ""
	f.title.CharLimit = model.MaxTitleLen
	f.title.Cursor.SetMode(cursor.CursorStatic)

	f.description = textarea.New()
	f.description.Placeholder = "Markdown is supported"
	f.description.ShowLineNumbers = false
	f.description.CharLimit = model.MaxDescriptionLen
	f.description.SetHeight(6)
	f.description.Cursor.SetMode(cursor.CursorStatic)

	f.assignee = textinput.New()
	f.assignee.Placeholder = "Unassigned"
	f.assignee.Prompt = ""
	f.assignee.CharLimit = model.MaxAssigneeLen
	f.assignee.Cursor.SetMode(cursor.CursorStatic)

	f.load(form.NewDraft(), 0)
	f.resize(80)
	return f
}

func (f *issueForm) load(d form.Draft, editID int) {
	f.editID = editID
	f.title.SetValue(d.Title)
	f.description.SetValue(d.Description)
	f.assignee.SetValue(d.Assignee)
	f.status = model.Status(d.Status)
	f.priority = model.Priority(d.Priority)
	f.errs = nil
	f.submitting = false
}

func (f *issueForm) loadIssue(is model.Issue) {
	f.load(form.DraftFromIssue(is), is.ID)
}

func (f issueForm) draft() form.Draft {
	return form.Draft{
		Title:       f.title.Value(),
		Description: f.description.Value(),
		Status:      string(f.status),
		Priority:    string(f.priority),
		Assignee:    f.assignee.Value(),
	}
}

func (f *issueForm) resize(width int) {
	w := max(width-4, 20)
	f.title.Width = w
	f.assignee.Width = w
	f.description.SetWidth(w)
}

func (f *issueForm) setFocus(ff formField) tea.Cmd {
	f.focus = ff
	f.title.Blur()
	f.description.Blur()
	f.assignee.Blur()
	switch ff {
	case fieldTitle:
		return f.title.Focus()
	case fieldDescription:
		return f.description.Focus()
	case fieldAssignee:
		return f.assignee.Focus()
	}
	return nil
}

// validate refreshes errs from the current input.
func (f *issueForm) validate() bool {
	err := form.Validate(f.draft())
	f.errs = nil
	var ve form.ValidationErrors
	if errors.As(err, &ve) {
		f.errs = ve
	}
	return err == nil
}

func (m appModel) openCreateForm(from view) (tea.Model, tea.Cmd) {
	m.form.load(form.NewDraft(), 0)
	m.form.loading = false
	m.formReturn = from
	m.view = viewForm
	cmd := m.form.setFocus(fieldTitle)
	return m, cmd
}

// openEditForm loads the latest copy of the issue before editing.
func (m appModel) openEditForm(id int, from view) (tea.Model, tea.Cmd) {
	m.form.load(form.NewDraft(), id)
	m.form.loading = true
	m.form.setFocus(fieldSubmit)
	m.formReturn = from
	m.view = viewForm
	return m, m.loadIssue(id, true)
}

func (m appModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.formKeys
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, k.Cancel):
		m.form.setFocus(fieldSubmit)
		m.view = m.formReturn
		return m, nil
	case m.form.loading || m.form.submitting:
		return m, nil
	case key.Matches(msg, k.Submit):
		return m.submitForm()
	case key.Matches(msg, k.Next):
		cmd := m.form.setFocus(m.form.focus.next())
		return m, cmd
	case key.Matches(msg, k.Prev):
		cmd := m.form.setFocus(m.form.focus.prev())
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.form.focus {
	case fieldTitle, fieldAssignee:
		if msg.Type == tea.KeyEnter {
			cmd = m.form.setFocus(m.form.focus.next())
			return m, cmd
		}
		if m.form.focus == fieldTitle {
			m.form.title, cmd = m.form.title.Update(msg)
		} else {
			m.form.assignee, cmd = m.form.assignee.Update(msg)
		}
	case fieldDescription:
		m.form.description, cmd = m.form.description.Update(msg)
	case fieldStatus, fieldPriority:
		if !key.Matches(msg, k.Cycle) {
			return m, nil
		}
		back := msg.Type == tea.KeyLeft
		if m.form.focus == fieldStatus {
			m.form.status = cycleValue(m.form.status, model.Statuses(), back)
		} else {
			m.form.priority = cycleValue(m.form.priority, model.Priorities(), back)
		}
	case fieldSubmit:
		if msg.Type == tea.KeyEnter {
			return m.submitForm()
		}
		return m, nil
	}
	if m.form.errs != nil {
		m.form.validate()
	}
	return m, cmd
}

// cycleValue steps through values, wrapping at both ends.
func cycleValue[T comparable](cur T, values []T, back bool) T {
	for i, v := range values {
		if v != cur {
			continue
		}
		if back {
			return values[(i+len(values)-1)%len(values)]
		}
		return values[(i+1)%len(values)]
	}
	return values[0]
}

func (m appModel) submitForm() (tea.Model, tea.Cmd) {
	if !m.form.validate() {
		return m, nil
	}
	m.form.submitting = true

	api := m.api
	d := m.form.draft()
	id := m.form.editID
	return m, func() tea.Msg {
		ctx := context.Background()
		if id == 0 {
			is, err := api.Create(ctx, form.ToCreatePayload(d))
			return issueSavedMsg{issue: is, err: err, created: true}
		}
		is, err := api.Update(ctx, id, form.ToUpdatePayload(d))
		return issueSavedMsg{issue: is, err: err}
	}
}

func (m appModel) applyIssueSaved(msg issueSavedMsg) (tea.Model, tea.Cmd) {
	m.form.submitting = false
	if msg.err != nil {
		what := "Error updating issue: "
		if msg.created {
			what = "Error creating issue: "
		}
		m.log.Warn("save issue failed", "created", msg.created, "err", msg.err.Error())
		cmd := m.showMinibuffer(what + reconcile.ErrorMessage(msg.err))
		return m, cmd
	}

	note := "Issue updated successfully!"
	if msg.created {
		note = "Issue created successfully!"
	}
	m.form.setFocus(fieldSubmit)
	is := msg.issue
	m.view = viewDetail
	m.detail = &is
	m.detailLoading = false
	m.detailPort.SetContent(renderIssueDetail(is, m.contentWidth()))
	m.detailPort.GotoTop()
	cmd := m.showMinibuffer(note)
	return m, cmd
}

func (m appModel) viewForm() string {
	f := m.form
	w := m.contentWidth()
	var b strings.Builder

	heading := "New issue"
	if f.editID != 0 {
		heading = "Edit issue #" + strconv.Itoa(f.editID)
	}
	b.WriteString(titleStyle.Render(heading))
	b.WriteString("\n\n")
	if f.loading {
		b.WriteString(m.spinner.View() + " Loading…\n")
		return b.String()
	}

	label := func(ff formField, text string) {
		if f.focus == ff {
			b.WriteString(focusLabelStyle.Render("› " + text))
		} else {
			b.WriteString(labelStyle.Render("  " + text))
		}
		b.WriteString("\n")
	}
	fieldErr := func(name string) {
		if msg := f.errs.For(name); msg != "" {
			b.WriteString("  " + errorTextStyle.Render(msg) + "\n")
		}
	}

	label(fieldTitle, "Title *")
	b.WriteString("  " + renderInputLine(w-4, f.title.View()) + "\n")
	fieldErr("title")

	label(fieldDescription, "Description")
	b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Render(f.description.View()) + "\n")
	fieldErr("description")

	label(fieldStatus, "Status")
	b.WriteString("  ‹ " + statusBadge(f.status) + " ›\n")
	fieldErr("status")

	label(fieldPriority, "Priority")
	b.WriteString("  ‹ " + priorityBadge(f.priority) + " ›\n")
	fieldErr("priority")

	label(fieldAssignee, "Assignee")
	b.WriteString("  " + renderInputLine(w-4, f.assignee.View()) + "\n")
	fieldErr("assignee")

	b.WriteString("\n")
	submit := "Create issue"
	if f.editID != 0 {
		submit = "Save changes"
	}
	if f.submitting {
		submit = "Saving…"
	}
	btn := buttonStyle
	if f.focus == fieldSubmit {
		btn = buttonFocus
	}
	b.WriteString("  " + btn.Render(submit) + "\n\n")
	b.WriteString(m.help.View(m.formKeys))
	return b.String()
}
