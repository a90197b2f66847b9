package tui

import (
	"context"

	"issuetrack/internal/model"
	"issuetrack/internal/reconcile"
)

type view int

const (
	viewList view = iota
	viewDetail
	viewForm
)

func (v view) String() string {
	switch v {
	case viewList:
		return "list"
	case viewDetail:
		return "detail"
	case viewForm:
		return "form"
	}
	return "unknown"
}

// filterFocus is which list filter input has the keyboard, if any.
type filterFocus int

const (
	filterNone filterFocus = iota
	filterTitle
	filterAssignee
)

// issueAPI is the part of the issue store client the TUI talks to.
type issueAPI interface {
	reconcile.Lister
	Get(ctx context.Context, id int) (model.Issue, error)
	Create(ctx context.Context, in model.IssueCreate) (model.Issue, error)
	Update(ctx context.Context, id int, in model.IssueUpdate) (model.Issue, error)
	Assignees(ctx context.Context) ([]string, error)
}

type listLoadedMsg struct{ res reconcile.Result }

type assigneesLoadedMsg struct {
	names []string
	err   error
}

type issueLoadedMsg struct {
	id      int
	issue   model.Issue
	err     error
	forEdit bool
}

type issueSavedMsg struct {
	issue   model.Issue
	err     error
	created bool
}

type minibufferClearMsg struct{ seq int }

// pageSizes are the sizes [ and ] step through.
var pageSizes = []int{5, 10, 25, 50, 100}

func stepPageSize(cur, dir int) int {
	i := 0
	for i < len(pageSizes) && pageSizes[i] < cur {
		i++
	}
	if i < len(pageSizes) && pageSizes[i] == cur {
		i += dir
	} else if dir < 0 {
		i--
	}
	if i < 0 {
		i = 0
	}
	if i >= len(pageSizes) {
		i = len(pageSizes) - 1
	}
	return pageSizes[i]
}

// nextStatus cycles all -> open -> in_progress -> closed -> all.
func nextStatus(cur *model.Status) *model.Status {
	return cycle(cur, model.Statuses())
}

func nextPriority(cur *model.Priority) *model.Priority {
	return cycle(cur, model.Priorities())
}

func cycle[T comparable](cur *T, values []T) *T {
	if cur == nil {
		if len(values) == 0 {
			return nil
		}
		v := values[0]
		return &v
	}
	for i, v := range values {
		if v == *cur && i+1 < len(values) {
			next := values[i+1]
			return &next
		}
	}
	return nil
}

func nextSortField(cur model.SortField) model.SortField {
	fields := model.SortFields()
	for i, f := range fields {
		if f == cur {
			return fields[(i+1)%len(fields)]
		}
	}
	return model.SortByUpdatedAt
}

// nextAssignee cycles "" -> names[0] -> ... -> "". An unknown current value
// starts over at names[0].
func nextAssignee(cur string, names []string) string {
	if len(names) == 0 {
		return ""
	}
	if cur == "" {
		return names[0]
	}
	for i, n := range names {
		if n == cur {
			if i+1 < len(names) {
				return names[i+1]
			}
			return ""
		}
	}
	return names[0]
}
