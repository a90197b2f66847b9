// Package form maps the create/edit screen's draft onto store payloads.
package form

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"issuetrack/internal/model"
)

// Draft holds the fields exactly as the user typed them.
type Draft struct {
	Title       string
	Description string
	Status      string
	Priority    string
	Assignee    string
}

// NewDraft is a blank create form: open, medium priority.
func NewDraft() Draft {
	return Draft{
		Status:   string(model.StatusOpen),
		Priority: string(model.PriorityMedium),
	}
}

// DraftFromIssue fills the edit form from a stored issue.
func DraftFromIssue(is model.Issue) Draft {
	return Draft{
		Title:       is.Title,
		Description: model.Deref(is.Description),
		Status:      string(is.Status),
		Priority:    string(is.Priority),
		Assignee:    model.Deref(is.Assignee),
	}
}

// ToCreatePayload maps empty optional fields to absent.
func ToCreatePayload(d Draft) model.IssueCreate {
	return model.IssueCreate{
		Title:       d.Title,
		Description: model.StringPtr(d.Description),
		Status:      statusPtr(d.Status),
		Priority:    priorityPtr(d.Priority),
		Assignee:    model.StringPtr(d.Assignee),
	}
}

// ToUpdatePayload is ToCreatePayload for an existing issue. The title is always
// sent because the form always shows it.
func ToUpdatePayload(d Draft) model.IssueUpdate {
	title := d.Title
	return model.IssueUpdate{
		Title:       &title,
		Description: model.StringPtr(d.Description),
		Status:      statusPtr(d.Status),
		Priority:    priorityPtr(d.Priority),
		Assignee:    model.StringPtr(d.Assignee),
	}
}

func statusPtr(s string) *model.Status {
	if s == "" {
		return nil
	}
	st := model.Status(s)
	return &st
}

func priorityPtr(s string) *model.Priority {
	if s == "" {
		return nil
	}
	p := model.Priority(s)
	return &p
}

// FieldError is one failed form constraint.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string { return e.Message }

type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// For returns the first message for field, or "".
func (e ValidationErrors) For(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// Validate checks d against the store's limits. It returns nil when d is valid.
func Validate(d Draft) error {
	var errs ValidationErrors
	if strings.TrimSpace(d.Title) == "" {
		errs = append(errs, FieldError{"title", "Title is required"})
	} else if utf8.RuneCountInString(d.Title) > model.MaxTitleLen {
		errs = append(errs, FieldError{"title", fmt.Sprintf("Title cannot exceed %d characters", model.MaxTitleLen)})
	}
	if utf8.RuneCountInString(d.Description) > model.MaxDescriptionLen {
		errs = append(errs, FieldError{"description", fmt.Sprintf("Description cannot exceed %d characters", model.MaxDescriptionLen)})
	}
	if d.Status != "" && !model.Status(d.Status).Valid() {
		errs = append(errs, FieldError{"status", fmt.Sprintf("Unknown status %q", d.Status)})
	}
	if d.Priority != "" && !model.Priority(d.Priority).Valid() {
		errs = append(errs, FieldError{"priority", fmt.Sprintf("Unknown priority %q", d.Priority)})
	}
	if utf8.RuneCountInString(d.Assignee) > model.MaxAssigneeLen {
		errs = append(errs, FieldError{"assignee", fmt.Sprintf("Assignee cannot exceed %d characters", model.MaxAssigneeLen)})
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
