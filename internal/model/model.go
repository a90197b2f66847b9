package model

// Issue is a client-side copy of an issue owned by the remote store.
//
// Timestamps stay as the ISO-8601 strings the server sent; they are only ever
// formatted for display.
type Issue struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	Assignee    *string  `json:"assignee,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// IssueCreate is the POST /issues body. Nil fields are omitted so the server
// applies its own defaults.
type IssueCreate struct {
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Assignee    *string   `json:"assignee,omitempty"`
}

// IssueUpdate is the PUT /issues/{id} body. Only non-nil fields are changed.
type IssueUpdate struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Assignee    *string   `json:"assignee,omitempty"`
}

// IssuePage is the paginated envelope returned by GET /issues.
type IssuePage struct {
	Items      []Issue `json:"items"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalPages int     `json:"total_pages"`
}

type Health struct {
	Status string `json:"status"`
}

// Field limits shared by the form adapter and the reference server.
const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 2000
	MaxAssigneeLen    = 100
	MaxPageSize       = 100
)

// StringPtr returns nil for "" so optional text never goes out as an empty value.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
