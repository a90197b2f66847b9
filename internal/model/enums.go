package model

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusClosed     Status = "closed"
)

// Statuses lists every status in display order.
func Statuses() []Status {
	return []Status{StatusOpen, StatusInProgress, StatusClosed}
}

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusClosed:
		return true
	}
	return false
}

func (s Status) Label() string {
	switch s {
	case StatusOpen:
		return "Open"
	case StatusInProgress:
		return "In progress"
	case StatusClosed:
		return "Closed"
	}
	return string(s)
}

// ParseStatus accepts the wire token in any case, with "-" or " " in place of "_".
func ParseStatus(s string) (Status, error) {
	st := Status(normalizeToken(s))
	if !st.Valid() {
		return "", fmt.Errorf("invalid status %q (want one of %s)", s, joinTokens(Statuses()))
	}
	return st, nil
}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Rank orders priorities low=1 .. critical=4.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	}
	return 0
}

func (p Priority) Label() string {
	if !p.Valid() {
		return string(p)
	}
	return strings.ToUpper(string(p[:1])) + string(p[1:])
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(normalizeToken(s))
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority %q (want one of %s)", s, joinTokens(Priorities()))
	}
	return p, nil
}

// SortField is one of the sortable list columns.
type SortField string

const (
	SortByID        SortField = "id"
	SortByTitle     SortField = "title"
	SortByStatus    SortField = "status"
	SortByPriority  SortField = "priority"
	SortByAssignee  SortField = "assignee"
	SortByCreatedAt SortField = "created_at"
	SortByUpdatedAt SortField = "updated_at"
)

func SortFields() []SortField {
	return []SortField{SortByID, SortByTitle, SortByStatus, SortByPriority, SortByAssignee, SortByCreatedAt, SortByUpdatedAt}
}

func (f SortField) Valid() bool {
	for _, v := range SortFields() {
		if v == f {
			return true
		}
	}
	return false
}

func ParseSortField(s string) (SortField, error) {
	f := SortField(normalizeToken(s))
	if !f.Valid() {
		return "", fmt.Errorf("invalid sort field %q (want one of %s)", s, joinTokens(SortFields()))
	}
	return f, nil
}

func normalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}

func joinTokens[T ~string](xs []T) string {
	parts := make([]string, 0, len(xs))
	for _, x := range xs {
		parts = append(parts, string(x))
	}
	return strings.Join(parts, "|")
}
