package tui

import (
	"fmt"
	"strings"

	"issuetrack/internal/model"
	"issuetrack/internal/reconcile"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// openDetail shows the list's copy right away and refreshes it from the store.
func (m appModel) openDetail(is model.Issue) (tea.Model, tea.Cmd) {
	m.view = viewDetail
	m.detail = &is
	m.detailLoading = true
	m.detailPort.SetContent(renderIssueDetail(is, m.contentWidth()))
	m.detailPort.GotoTop()
	return m, m.loadIssue(is.ID, false)
}

func (m appModel) backToList() (tea.Model, tea.Cmd) {
	m.view = viewList
	m.detail = nil
	m.detailLoading = false
	return m, tea.Batch(m.fetch(m.rec.Refetch()), m.loadAssignees())
}

func (m appModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.detailKeys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Back):
		return m.backToList()
	case key.Matches(msg, k.Edit):
		if m.detail != nil {
			return m.openEditForm(m.detail.ID, viewDetail)
		}
		return m, nil
	case key.Matches(msg, k.Reload):
		if m.detail != nil {
			m.detailLoading = true
			return m, m.loadIssue(m.detail.ID, false)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detailPort, cmd = m.detailPort.Update(msg)
	return m, cmd
}

func (m appModel) applyIssueLoaded(msg issueLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.forEdit {
		if m.view != viewForm || m.form.editID != msg.id {
			return m, nil
		}
		if msg.err != nil {
			m.view = m.formReturn
			cmd := m.showMinibuffer("Error loading issue for editing: " + reconcile.ErrorMessage(msg.err))
			return m, cmd
		}
		m.form.loading = false
		m.form.loadIssue(msg.issue)
		cmd := m.form.setFocus(fieldTitle)
		return m, cmd
	}

	if m.view != viewDetail || m.detail == nil || m.detail.ID != msg.id {
		return m, nil
	}
	m.detailLoading = false
	if msg.err != nil {
		cmd := m.showMinibuffer("Error loading issue details: " + reconcile.ErrorMessage(msg.err))
		return m, cmd
	}
	is := msg.issue
	m.detail = &is
	m.detailPort.SetContent(renderIssueDetail(is, m.contentWidth()))
	return m, nil
}

func (m appModel) viewDetail() string {
	if m.detail == nil {
		return styleMuted().Render("No issue selected.")
	}
	var b strings.Builder
	b.WriteString(m.detailPort.View())
	b.WriteString("\n")
	if m.detailLoading {
		b.WriteString(m.spinner.View() + " Refreshing…\n")
	}
	b.WriteString(m.help.View(m.detailKeys))
	return b.String()
}

// renderIssueDetail is the full issue page: title, badges, people and times,
// then the description rendered as markdown.
func renderIssueDetail(is model.Issue, width int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("#%d  %s", is.ID, is.Title)))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, statusBadge(is.Status), " ", priorityBadge(is.Priority)))
	b.WriteString("\n\n")

	field := func(label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-10s", label)))
		b.WriteString(" ")
		b.WriteString(value)
		b.WriteString("\n")
	}
	field("Assignee", emptyAsDash(model.Deref(is.Assignee)))
	field("Created", formatTimestamp(is.CreatedAt))
	field("Updated", formatTimestamp(is.UpdatedAt))

	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Description"))
	b.WriteString("\n")
	if desc := renderMarkdown(model.Deref(is.Description), width); desc != "" {
		b.WriteString(desc)
	} else {
		b.WriteString(styleMuted().Render("No description."))
	}
	return b.String()
}
