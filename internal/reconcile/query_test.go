package reconcile

import (
	"testing"

	"issuetrack/internal/issueclient"
	"issuetrack/internal/model"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name    string
		filters model.FilterCriteria
		sort    model.SortSpec
		page    model.PageState
		want    model.CanonicalQuery
	}{
		{
			name:    "status filter on first page",
			filters: model.FilterCriteria{Status: model.StatusPtr(model.StatusOpen)},
			sort:    model.SortSpec{Field: model.SortByUpdatedAt, Descending: true},
			page:    model.PageState{Index: 0, Size: 10},
			want: model.CanonicalQuery{
				Status:   model.StatusPtr(model.StatusOpen),
				Page:     1,
				PageSize: 10,
				SortBy:   model.SortByUpdatedAt,
				SortDesc: true,
			},
		},
		{
			name:    "no filters",
			filters: model.FilterCriteria{},
			sort:    model.SortSpec{Field: model.SortByID},
			page:    model.PageState{Index: 4, Size: 25},
			want:    model.CanonicalQuery{Page: 5, PageSize: 25, SortBy: model.SortByID},
		},
		{
			name: "empty values are dropped",
			filters: model.FilterCriteria{
				Title:    "",
				Status:   model.StatusPtr(""),
				Priority: model.PriorityPtr(""),
				Assignee: "",
			},
			sort: model.SortSpec{Field: model.SortByTitle, Descending: true},
			page: model.PageState{Index: 0, Size: 10},
			want: model.CanonicalQuery{Page: 1, PageSize: 10, SortBy: model.SortByTitle, SortDesc: true},
		},
		{
			name: "every filter present",
			filters: model.FilterCriteria{
				Title:    "crash",
				Status:   model.StatusPtr(model.StatusClosed),
				Priority: model.PriorityPtr(model.PriorityLow),
				Assignee: "bob",
			},
			sort: model.SortSpec{Field: model.SortByPriority},
			page: model.PageState{Index: 1, Size: 50, TotalItems: 400},
			want: model.CanonicalQuery{
				Title:    "crash",
				Status:   model.StatusPtr(model.StatusClosed),
				Priority: model.PriorityPtr(model.PriorityLow),
				Assignee: "bob",
				Page:     2,
				PageSize: 50,
				SortBy:   model.SortByPriority,
			},
		},
		{
			name:    "whitespace is a value",
			filters: model.FilterCriteria{Title: " "},
			sort:    model.DefaultSort(),
			page:    model.PageState{Size: 10},
			want:    model.CanonicalQuery{Title: " ", Page: 1, PageSize: 10, SortBy: model.SortByUpdatedAt, SortDesc: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Canonicalize(tt.filters, tt.sort, tt.page)
			assert.Empty(t, cmp.Diff(tt.want, got), "canonical query mismatch")
		})
	}
}

// The encoded request must never carry an empty-string constraint, whatever
// subset of filters is set.
func TestCanonicalize_EncodedNeverHasEmptyValues(t *testing.T) {
	titles := []string{"", "a"}
	statuses := []*model.Status{nil, model.StatusPtr(""), model.StatusPtr(model.StatusInProgress)}
	priorities := []*model.Priority{nil, model.PriorityPtr(""), model.PriorityPtr(model.PriorityHigh)}
	assignees := []string{"", "alice"}

	for _, title := range titles {
		for _, st := range statuses {
			for _, pr := range priorities {
				for _, as := range assignees {
					f := model.FilterCriteria{Title: title, Status: st, Priority: pr, Assignee: as}
					v := issueclient.EncodeQuery(Canonicalize(f, model.DefaultSort(), model.PageState{Size: 10}))
					for k, vals := range v {
						for _, val := range vals {
							if val == "" {
								t.Fatalf("filters %+v: parameter %q has an empty value", f, k)
							}
						}
						switch k {
						case "title", "status", "priority", "assignee", "page", "page_size", "sort_by", "sort_desc":
						default:
							t.Fatalf("unexpected parameter %q", k)
						}
					}
					for _, k := range []string{"page", "page_size", "sort_by", "sort_desc"} {
						if v.Get(k) == "" {
							t.Fatalf("filters %+v: expected %q to always be sent", f, k)
						}
					}
				}
			}
		}
	}
}
