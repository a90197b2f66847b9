package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"issuetrack/internal/issueclient"
	"issuetrack/internal/model"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingLister answers every List with respond and remembers each query.
type recordingLister struct {
	mu      sync.Mutex
	queries []model.CanonicalQuery
	respond func(q model.CanonicalQuery) (model.IssuePage, error)
}

func (l *recordingLister) List(_ context.Context, q model.CanonicalQuery) (model.IssuePage, error) {
	l.mu.Lock()
	l.queries = append(l.queries, q)
	l.mu.Unlock()
	if l.respond == nil {
		return model.IssuePage{Items: []model.Issue{}, Page: q.Page, PageSize: q.PageSize, TotalPages: 1}, nil
	}
	return l.respond(q)
}

func (l *recordingLister) calls() []model.CanonicalQuery {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.CanonicalQuery(nil), l.queries...)
}

func issues(ids ...int) []model.Issue {
	out := make([]model.Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Issue{ID: id, Title: fmt.Sprintf("issue %d", id), Status: model.StatusOpen, Priority: model.PriorityMedium})
	}
	return out
}

func pageOf(total int, ids ...int) model.IssuePage {
	return model.IssuePage{Items: issues(ids...), Total: total, Page: 1, PageSize: 10, TotalPages: 1}
}

func run(t *testing.T, r *Reconciler, f Fetch) Result {
	t.Helper()
	require.NotNil(t, f, "mutation should return a fetch")
	res := f(context.Background())
	r.Apply(res)
	return res
}

func TestNew_Defaults(t *testing.T) {
	r := New(&recordingLister{})

	assert.Equal(t, model.DefaultSort(), r.Sort())
	assert.Equal(t, model.PageState{Index: 0, Size: 10}, r.Page())
	assert.Equal(t, Idle, r.Status().Phase)
	assert.True(t, r.Filters().IsZero())
	assert.NotNil(t, r.Items())
	assert.Empty(t, r.Items())
}

func TestNew_Options(t *testing.T) {
	r := New(&recordingLister{},
		WithSort(model.SortSpec{Field: model.SortByPriority}),
		WithPageSize(25),
		WithStaleGuard(),
	)
	assert.Equal(t, model.SortSpec{Field: model.SortByPriority}, r.Sort())
	assert.Equal(t, 25, r.Page().Size)
	assert.True(t, r.StaleGuard())

	r = New(&recordingLister{}, WithSort(model.SortSpec{Field: "rank"}), WithPageSize(0))
	assert.Equal(t, model.DefaultSort(), r.Sort(), "invalid sort should be ignored")
	assert.Equal(t, model.DefaultPageSize, r.Page().Size, "non-positive size should be ignored")
}

func TestRefetch_SetsLoadingAndIssuesOneCall(t *testing.T) {
	l := &recordingLister{}
	r := New(l)

	f := r.Refetch()
	assert.Equal(t, Loading, r.Status().Phase)
	assert.Empty(t, l.calls(), "no call until the host runs the fetch")

	res := f(context.Background())
	assert.Len(t, l.calls(), 1)
	assert.Equal(t, Loading, r.Status().Phase, "state changes only through Apply")

	_, applied := r.Apply(res)
	assert.True(t, applied)
	assert.Equal(t, Ready, r.Status().Phase)
}

func TestApply_SuccessReplacesItemsAndTotal(t *testing.T) {
	l := &recordingLister{respond: func(model.CanonicalQuery) (model.IssuePage, error) {
		return pageOf(42, 1, 2, 3), nil
	}}
	r := New(l)

	run(t, r, r.Refetch())

	assert.Equal(t, []int{1, 2, 3}, ids(r.Items()))
	assert.Equal(t, 42, r.Page().TotalItems)
	assert.Equal(t, 5, r.Page().TotalPages())
	assert.Equal(t, Status{Phase: Ready}, r.Status())
}

func TestSetFilters_ResetsPageIndex(t *testing.T) {
	l := &recordingLister{}
	r := New(l)
	run(t, r, r.SetPage(3, 10))
	require.Equal(t, 3, r.Page().Index)

	run(t, r, r.SetFilters(model.FilterCriteria{Title: "login"}))

	assert.Equal(t, 0, r.Page().Index)
	assert.Equal(t, 10, r.Page().Size, "page size survives a filter change")
	calls := l.calls()
	last := calls[len(calls)-1]
	assert.Equal(t, 1, last.Page)
	assert.Equal(t, "login", last.Title)
}

func TestSetSortAndPage_KeepFilters(t *testing.T) {
	l := &recordingLister{}
	r := New(l)
	filters := model.FilterCriteria{Status: model.StatusPtr(model.StatusClosed), Assignee: "bob"}
	run(t, r, r.SetFilters(filters))
	run(t, r, r.SetPage(2, 10))

	run(t, r, r.SetSort(model.SortSpec{Field: model.SortByTitle}))
	assert.Equal(t, filters, r.Filters())
	assert.Equal(t, 2, r.Page().Index, "sort change keeps the page")

	run(t, r, r.SetPage(4, 20))
	assert.Equal(t, filters, r.Filters())
	assert.Equal(t, model.SortSpec{Field: model.SortByTitle}, r.Sort())

	calls := l.calls()
	want := model.CanonicalQuery{
		Status:   model.StatusPtr(model.StatusClosed),
		Assignee: "bob",
		Page:     5,
		PageSize: 20,
		SortBy:   model.SortByTitle,
	}
	assert.Empty(t, cmp.Diff(want, calls[len(calls)-1]))
}

func TestSetPage_AfterAssigneeFilter(t *testing.T) {
	l := &recordingLister{}
	r := New(l)
	run(t, r, r.SetFilters(model.FilterCriteria{Assignee: "alice"}))

	run(t, r, r.SetPage(2, 20))

	calls := l.calls()
	require.Len(t, calls, 2)
	v := issueclient.EncodeQuery(calls[1])
	assert.Equal(t, "alice", v.Get("assignee"))
	assert.Equal(t, "3", v.Get("page"))
	assert.Equal(t, "20", v.Get("page_size"))
}

func TestSetPage_ClampsInvalidValues(t *testing.T) {
	r := New(&recordingLister{})
	r.SetPage(-2, 0)
	assert.Equal(t, model.PageState{Index: 0, Size: 10}, r.Page())
}

func TestSetSort_InvalidFieldKeepsCurrent(t *testing.T) {
	l := &recordingLister{}
	r := New(l, WithSort(model.SortSpec{Field: model.SortByPriority, Descending: true}))

	run(t, r, r.SetSort(model.SortSpec{}))
	assert.Equal(t, model.SortSpec{Field: model.SortByPriority}, r.Sort())

	run(t, r, r.SetSort(model.SortSpec{Field: "nope", Descending: true}))
	v := issueclient.EncodeQuery(l.calls()[1])
	assert.Equal(t, "priority", v.Get("sort_by"))
	assert.Equal(t, "true", v.Get("sort_desc"))
}

func TestScenario_OpenIssuesFirstPage(t *testing.T) {
	l := &recordingLister{}
	r := New(l)

	run(t, r, r.SetFilters(model.FilterCriteria{Status: model.StatusPtr(model.StatusOpen)}))

	calls := l.calls()
	require.Len(t, calls, 1)
	want := model.CanonicalQuery{
		Status:   model.StatusPtr(model.StatusOpen),
		Page:     1,
		PageSize: 10,
		SortBy:   model.SortByUpdatedAt,
		SortDesc: true,
	}
	assert.Empty(t, cmp.Diff(want, calls[0]))
}

func TestSetFilters_EqualFiltersStillRefetch(t *testing.T) {
	l := &recordingLister{}
	r := New(l)
	f := model.FilterCriteria{Priority: model.PriorityPtr(model.PriorityHigh)}

	run(t, r, r.SetFilters(f))
	run(t, r, r.SetFilters(f))
	run(t, r, r.ClearFilters())
	run(t, r, r.ClearFilters())

	calls := l.calls()
	require.Len(t, calls, 4)
	assert.Empty(t, cmp.Diff(calls[0], calls[1]))
	assert.Nil(t, calls[3].Priority)
}

func TestApply_LastToResolveWins(t *testing.T) {
	l := &recordingLister{respond: func(q model.CanonicalQuery) (model.IssuePage, error) {
		if q.Assignee == "alice" {
			return pageOf(1, 10), nil
		}
		return pageOf(2, 20, 21), nil
	}}
	r := New(l)

	fetchA := r.SetFilters(model.FilterCriteria{Assignee: "alice"})
	fetchB := r.SetFilters(model.FilterCriteria{Assignee: "bob"})
	resB := fetchB(context.Background())
	resA := fetchA(context.Background())

	_, applied := r.Apply(resB)
	require.True(t, applied)
	_, applied = r.Apply(resA)
	require.True(t, applied)

	assert.Equal(t, []int{10}, ids(r.Items()), "A resolved last so its items win")
	assert.Equal(t, 1, r.Page().TotalItems)
	assert.Equal(t, Ready, r.Status().Phase)
	assert.Equal(t, "bob", r.Filters().Assignee, "filters still reflect the latest request")
}

func TestApply_StaleGuardDropsOlderResults(t *testing.T) {
	l := &recordingLister{respond: func(q model.CanonicalQuery) (model.IssuePage, error) {
		if q.Assignee == "alice" {
			return pageOf(1, 10), nil
		}
		return pageOf(2, 20, 21), nil
	}}
	r := New(l, WithStaleGuard())

	fetchA := r.SetFilters(model.FilterCriteria{Assignee: "alice"})
	fetchB := r.SetFilters(model.FilterCriteria{Assignee: "bob"})
	resA := fetchA(context.Background())

	_, applied := r.Apply(resA)
	assert.False(t, applied)
	assert.Equal(t, Loading, r.Status().Phase, "still waiting for the newest fetch")
	assert.Empty(t, r.Items())

	_, applied = r.Apply(fetchB(context.Background()))
	assert.True(t, applied)
	_, applied = r.Apply(resA)
	assert.False(t, applied)

	assert.Equal(t, []int{20, 21}, ids(r.Items()))
	assert.Equal(t, Ready, r.Status().Phase)
}

func TestApply_FailureKeepsItems(t *testing.T) {
	fail := false
	l := &recordingLister{respond: func(model.CanonicalQuery) (model.IssuePage, error) {
		if fail {
			return model.IssuePage{}, &issueclient.TransportError{StatusCode: 422, Message: "page_size must be <= 100"}
		}
		return pageOf(3, 1, 2, 3), nil
	}}
	r := New(l)
	run(t, r, r.Refetch())
	before := append([]model.Issue(nil), r.Items()...)

	fail = true
	f := r.SetPage(1, 10)
	notice, applied := r.Apply(f(context.Background()))

	require.True(t, applied)
	assert.Equal(t, "page_size must be <= 100", notice)
	assert.Equal(t, Status{Phase: Failed, Message: "page_size must be <= 100"}, r.Status())
	assert.Empty(t, cmp.Diff(before, r.Items()), "items stay visible after a failure")
	assert.Equal(t, 3, r.Page().TotalItems)
	assert.Equal(t, 1, r.Page().Index, "page position is still the requested one")

	fail = false
	run(t, r, r.Refetch())
	assert.Equal(t, Ready, r.Status().Phase, "next action retries implicitly")
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"server detail", &issueclient.TransportError{StatusCode: 404, Message: "Issue not found"}, "Issue not found"},
		{"wrapped", fmt.Errorf("list: %w", &issueclient.TransportError{Message: "boom"}), "boom"},
		{"plain error", errors.New("connection refused"), "connection refused"},
		{"blank", errors.New("  "), issueclient.GenericMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorMessage(tt.err))
		})
	}
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", Phase(99).String())
}

func ids(xs []model.Issue) []int {
	out := make([]int, 0, len(xs))
	for _, x := range xs {
		out = append(out, x.ID)
	}
	return out
}
