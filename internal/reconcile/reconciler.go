// Package reconcile owns the issue list's query state: filters, sort and page.
//
// Every state change recomputes one canonical query and hands back a Fetch for the
// host to run off the UI loop. The host feeds the Result back through Apply. All
// methods must be called from a single goroutine (the bubbletea Update loop).
package reconcile

import (
	"context"
	"errors"
	"strings"

	"issuetrack/internal/issueclient"
	"issuetrack/internal/logging"
	"issuetrack/internal/model"
)

// Lister is the part of the issue store the list view needs.
type Lister interface {
	List(ctx context.Context, q model.CanonicalQuery) (model.IssuePage, error)
}

// ListerFunc adapts a plain function to Lister.
type ListerFunc func(ctx context.Context, q model.CanonicalQuery) (model.IssuePage, error)

func (f ListerFunc) List(ctx context.Context, q model.CanonicalQuery) (model.IssuePage, error) {
	return f(ctx, q)
}

type Phase int

const (
	Idle Phase = iota
	Loading
	Ready
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is the list view's display state. Message is set only when Phase is Failed.
type Status struct {
	Phase   Phase
	Message string
}

// Result is the completion event of one Fetch.
type Result struct {
	Seq   uint64
	Query model.CanonicalQuery
	Page  model.IssuePage
	Err   error
}

// Fetch performs exactly one List call. It touches no reconciler state, so it is
// safe to run on any goroutine.
type Fetch func(ctx context.Context) Result

type Reconciler struct {
	lister Lister
	log    *logging.Logger

	filters model.FilterCriteria
	sort    model.SortSpec
	page    model.PageState
	items   []model.Issue
	status  Status

	issued     uint64
	staleGuard bool
}

type Option func(*Reconciler)

// WithStaleGuard drops any result that is not from the most recently issued
// fetch. Without it the last result to arrive wins, whatever its age.
func WithStaleGuard() Option {
	return func(r *Reconciler) { r.staleGuard = true }
}

func WithLogger(l *logging.Logger) Option {
	return func(r *Reconciler) { r.log = l }
}

// WithSort sets the initial sort. Invalid fields are ignored.
func WithSort(s model.SortSpec) Option {
	return func(r *Reconciler) {
		if s.Field.Valid() {
			r.sort = s
		}
	}
}

// WithFilters sets the initial filters.
func WithFilters(f model.FilterCriteria) Option {
	return func(r *Reconciler) { r.filters = f }
}

// WithPageSize sets the initial page size.
func WithPageSize(n int) Option {
	return func(r *Reconciler) {
		if n > 0 {
			r.page.Size = n
		}
	}
}

func New(lister Lister, opts ...Option) *Reconciler {
	r := &Reconciler{
		lister: lister,
		sort:   model.DefaultSort(),
		page:   model.PageState{Size: model.DefaultPageSize},
		items:  []model.Issue{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reconciler) Filters() model.FilterCriteria { return r.filters }
func (r *Reconciler) Sort() model.SortSpec          { return r.sort }
func (r *Reconciler) Page() model.PageState         { return r.page }
func (r *Reconciler) Status() Status                { return r.status }
func (r *Reconciler) StaleGuard() bool              { return r.staleGuard }

// Items is the currently displayed page. Callers must not modify it.
func (r *Reconciler) Items() []model.Issue { return r.items }

// Query is the canonical query for the current state.
func (r *Reconciler) Query() model.CanonicalQuery {
	return Canonicalize(r.filters, r.sort, r.page)
}

// SetFilters replaces the filters and jumps back to the first page. Equal filters
// still refetch.
func (r *Reconciler) SetFilters(next model.FilterCriteria) Fetch {
	r.filters = next
	r.page.Index = 0
	return r.Refetch()
}

func (r *Reconciler) ClearFilters() Fetch {
	return r.SetFilters(model.FilterCriteria{})
}

// SetSort replaces the sort and keeps the current page. An invalid field keeps
// the current one, so every query carries a sort_by.
func (r *Reconciler) SetSort(next model.SortSpec) Fetch {
	if !next.Field.Valid() {
		next.Field = r.sort.Field
	}
	r.sort = next
	return r.Refetch()
}

// SetPage moves to the given 0-based page with the given size. Filters and sort
// are kept. A negative index is treated as 0 and a non-positive size keeps the
// current one.
func (r *Reconciler) SetPage(index, size int) Fetch {
	if index < 0 {
		index = 0
	}
	if size <= 0 {
		size = r.page.Size
	}
	r.page.Index = index
	r.page.Size = size
	return r.Refetch()
}

// Refetch marks the list as loading and returns the fetch for the current query.
func (r *Reconciler) Refetch() Fetch {
	r.issued++
	seq := r.issued
	q := r.Query()
	r.status = Status{Phase: Loading}
	r.log.Debug("list fetch issued", "seq", seq, "page", q.Page, "page_size", q.PageSize, "sort_by", string(q.SortBy), "sort_desc", q.SortDesc)

	lister := r.lister
	return func(ctx context.Context) Result {
		page, err := lister.List(ctx, q)
		return Result{Seq: seq, Query: q, Page: page, Err: err}
	}
}

// Apply records a completed fetch. On failure the displayed items stay as they
// were and the returned message is meant for a transient notification. applied is
// false when the stale guard dropped the result.
func (r *Reconciler) Apply(res Result) (notice string, applied bool) {
	if r.staleGuard && res.Seq != r.issued {
		r.log.Debug("list result dropped", "seq", res.Seq, "latest", r.issued)
		return "", false
	}
	if res.Err != nil {
		msg := ErrorMessage(res.Err)
		r.status = Status{Phase: Failed, Message: msg}
		r.log.Warn("list fetch failed", "seq", res.Seq, "err", msg)
		return msg, true
	}
	items := res.Page.Items
	if items == nil {
		items = []model.Issue{}
	}
	r.items = items
	r.page.TotalItems = res.Page.Total
	r.status = Status{Phase: Ready}
	r.log.Debug("list fetch applied", "seq", res.Seq, "items", len(items), "total", res.Page.Total)
	return "", true
}

// ErrorMessage prefers the store's own message, then the error text, then a
// generic fallback.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var te *issueclient.TransportError
	if errors.As(err, &te) && strings.TrimSpace(te.Message) != "" {
		return te.Message
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return issueclient.GenericMessage
}
