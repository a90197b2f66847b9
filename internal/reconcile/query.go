package reconcile

import "issuetrack/internal/model"

// Canonicalize merges the three state axes into the request for one list fetch.
// Filter fields appear only when present and non-empty; page is sent 1-based;
// sort is always sent. Nothing else is ever added.
func Canonicalize(f model.FilterCriteria, s model.SortSpec, p model.PageState) model.CanonicalQuery {
	var q model.CanonicalQuery
	if f.Title != "" {
		q.Title = f.Title
	}
	if f.Status != nil && *f.Status != "" {
		q.Status = model.StatusPtr(*f.Status)
	}
	if f.Priority != nil && *f.Priority != "" {
		q.Priority = model.PriorityPtr(*f.Priority)
	}
	if f.Assignee != "" {
		q.Assignee = f.Assignee
	}
	q.Page = p.Index + 1
	q.PageSize = p.Size
	q.SortBy = s.Field
	q.SortDesc = s.Descending
	return q
}
