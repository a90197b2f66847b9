package tui

import (
	"issuetrack/internal/reconcile"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.syncTable()
		if m.detail != nil {
			m.detailPort.SetContent(renderIssueDetail(*m.detail, m.contentWidth()))
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case listLoadedMsg:
		notice, applied := m.rec.Apply(msg.res)
		if applied {
			m.syncTable()
		}
		if notice != "" {
			cmd := m.showMinibuffer(notice)
			return m, cmd
		}
		return m, nil

	case assigneesLoadedMsg:
		if msg.err != nil {
			m.log.Warn("load assignees failed", "err", msg.err.Error())
			return m, nil
		}
		m.assignees = msg.names
		return m, nil

	case issueLoadedMsg:
		return m.applyIssueLoaded(msg)

	case issueSavedMsg:
		return m.applyIssueSaved(msg)

	case minibufferClearMsg:
		if msg.seq == m.minibufferSeq {
			m.minibufferText = ""
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case viewDetail:
			return m.updateDetail(msg)
		case viewForm:
			return m.updateForm(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m appModel) busy() bool {
	return m.rec.Status().Phase == reconcile.Loading || m.detailLoading || m.form.loading || m.form.submitting
}

func (m appModel) View() string {
	var body string
	switch m.view {
	case viewDetail:
		body = m.viewDetail()
	case viewForm:
		body = m.viewForm()
	default:
		body = m.viewList()
	}
	w := m.contentWidth()
	if m.height > 1 {
		body = fitPane(body, w, m.height-1)
	}
	line := minibufferStyle.Width(w).Render(truncate(m.minibufferText, w-2))
	return lipgloss.JoinVertical(lipgloss.Left, body, line)
}
