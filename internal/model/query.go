package model

// FilterCriteria constrains the issue list. A nil pointer or "" means no constraint.
type FilterCriteria struct {
	Title    string    `json:"title,omitempty"`
	Status   *Status   `json:"status,omitempty"`
	Priority *Priority `json:"priority,omitempty"`
	Assignee string    `json:"assignee,omitempty"`
}

// IsZero reports whether no field constrains the result set.
func (f FilterCriteria) IsZero() bool {
	return f.Title == "" && f.Assignee == "" &&
		(f.Status == nil || *f.Status == "") &&
		(f.Priority == nil || *f.Priority == "")
}

type SortSpec struct {
	Field      SortField `json:"field"`
	Descending bool      `json:"descending"`
}

func DefaultSort() SortSpec {
	return SortSpec{Field: SortByUpdatedAt, Descending: true}
}

// PageState is the list view's 0-based page position.
type PageState struct {
	Index      int `json:"page_index"`
	Size       int `json:"page_size"`
	TotalItems int `json:"total_items"`
}

const DefaultPageSize = 10

// TotalPages is at least 1, matching the server's envelope.
func (p PageState) TotalPages() int {
	if p.Size <= 0 || p.TotalItems <= 0 {
		return 1
	}
	return (p.TotalItems + p.Size - 1) / p.Size
}

// CanonicalQuery is the fully merged request for one list fetch. Page is 1-based.
// Optional fields are either absent (nil / "") or a concrete non-empty value.
type CanonicalQuery struct {
	Title    string    `json:"title,omitempty"`
	Status   *Status   `json:"status,omitempty"`
	Priority *Priority `json:"priority,omitempty"`
	Assignee string    `json:"assignee,omitempty"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
	SortBy   SortField `json:"sort_by"`
	SortDesc bool      `json:"sort_desc"`
}

func StatusPtr(s Status) *Status       { return &s }
func PriorityPtr(p Priority) *Priority { return &p }
