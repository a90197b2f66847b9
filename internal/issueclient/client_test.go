package issueclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"issuetrack/internal/model"

	"github.com/google/go-cmp/cmp"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestEncodeQuery_OmitsAbsentFields(t *testing.T) {
	cases := []struct {
		name string
		in   model.CanonicalQuery
		want url.Values
	}{
		{
			name: "no filters",
			in:   model.CanonicalQuery{Page: 1, PageSize: 10, SortBy: model.SortByUpdatedAt, SortDesc: true},
			want: url.Values{"page": {"1"}, "page_size": {"10"}, "sort_by": {"updated_at"}, "sort_desc": {"true"}},
		},
		{
			name: "every filter",
			in: model.CanonicalQuery{
				Title:    "login",
				Status:   model.StatusPtr(model.StatusInProgress),
				Priority: model.PriorityPtr(model.PriorityCritical),
				Assignee: "alice",
				Page:     3,
				PageSize: 20,
				SortBy:   model.SortByPriority,
				SortDesc: false,
			},
			want: url.Values{
				"title":     {"login"},
				"status":    {"in_progress"},
				"priority":  {"critical"},
				"assignee":  {"alice"},
				"page":      {"3"},
				"page_size": {"20"},
				"sort_by":   {"priority"},
				"sort_desc": {"false"},
			},
		},
		{
			name: "empty enum pointers are dropped",
			in: model.CanonicalQuery{
				Status:   model.StatusPtr(""),
				Priority: model.PriorityPtr(""),
				Page:     1,
				PageSize: 10,
				SortBy:   model.SortByID,
			},
			want: url.Values{"page": {"1"}, "page_size": {"10"}, "sort_by": {"id"}, "sort_desc": {"false"}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, EncodeQuery(tc.in)); diff != "" {
				t.Fatalf("EncodeQuery mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestList_SendsQueryAndDecodesEnvelope(t *testing.T) {
	var gotQuery url.Values
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/issues" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get(RequestIDHeader) == "" {
			t.Errorf("expected request id header")
		}
		gotQuery = r.URL.Query()
		_, _ = io.WriteString(w, `{"items":[{"id":7,"title":"A","status":"open","priority":"high","created_at":"2024-01-01T00:00:00","updated_at":"2024-01-02T00:00:00"}],"total":11,"page":2,"page_size":10,"total_pages":2}`)
	})

	page, err := c.List(context.Background(), model.CanonicalQuery{
		Status:   model.StatusPtr(model.StatusOpen),
		Page:     2,
		PageSize: 10,
		SortBy:   model.SortByUpdatedAt,
		SortDesc: true,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if _, ok := gotQuery["title"]; ok {
		t.Fatalf("expected title to be omitted, got %v", gotQuery)
	}
	if _, ok := gotQuery["assignee"]; ok {
		t.Fatalf("expected assignee to be omitted, got %v", gotQuery)
	}
	if gotQuery.Get("status") != "open" || gotQuery.Get("page") != "2" {
		t.Fatalf("unexpected query: %v", gotQuery)
	}
	want := model.IssuePage{
		Items: []model.Issue{{
			ID:        7,
			Title:     "A",
			Status:    model.StatusOpen,
			Priority:  model.PriorityHigh,
			CreatedAt: "2024-01-01T00:00:00",
			UpdatedAt: "2024-01-02T00:00:00",
		}},
		Total:      11,
		Page:       2,
		PageSize:   10,
		TotalPages: 2,
	}
	if diff := cmp.Diff(want, page); diff != "" {
		t.Fatalf("List mismatch (-want +got):\n%s", diff)
	}
}

func TestList_EmptyItemsIsNonNil(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"items":null,"total":0,"page":1,"page_size":10,"total_pages":1}`)
	})
	page, err := c.List(context.Background(), model.CanonicalQuery{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Items == nil || len(page.Items) != 0 {
		t.Fatalf("expected empty non-nil items, got %#v", page.Items)
	}
}

func TestCreate_OmitsAbsentOptionalFields(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":1,"title":"T","status":"open","priority":"medium","created_at":"x","updated_at":"x"}`)
	})

	got, err := c.Create(context.Background(), model.IssueCreate{Title: "T", Status: model.StatusPtr(model.StatusOpen)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.ID != 1 {
		t.Fatalf("expected id 1, got %d", got.ID)
	}
	for _, k := range []string{"description", "assignee", "priority"} {
		if _, ok := body[k]; ok {
			t.Fatalf("expected %q to be omitted from body %v", k, body)
		}
	}
	if body["title"] != "T" || body["status"] != "open" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestUpdate_UsesPUTWithID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/issues/42" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"id":42,"title":"New","status":"closed","priority":"low","created_at":"x","updated_at":"y"}`)
	})
	title := "New"
	got, err := c.Update(context.Background(), 42, model.IssueUpdate{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Status != model.StatusClosed {
		t.Fatalf("expected closed, got %q", got.Status)
	}
}

func TestAssigneesAndHealth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/assignees":
			_, _ = io.WriteString(w, `["alice","bob"]`)
		case "/health":
			_, _ = io.WriteString(w, `{"status":"ok"}`)
		default:
			http.NotFound(w, r)
		}
	})
	as, err := c.Assignees(context.Background())
	if err != nil {
		t.Fatalf("Assignees: %v", err)
	}
	if diff := cmp.Diff([]string{"alice", "bob"}, as); diff != "" {
		t.Fatalf("Assignees mismatch (-want +got):\n%s", diff)
	}
	h, err := c.Health(context.Background())
	if err != nil || h.Status != "ok" {
		t.Fatalf("Health: %+v, %v", h, err)
	}
}

func TestErrors_NormalizedToTransportError(t *testing.T) {
	cases := []struct {
		name       string
		status     int
		body       string
		wantMsg    string
		wantStatus int
	}{
		{
			name:       "string detail",
			status:     http.StatusNotFound,
			body:       `{"detail":"Issue not found"}`,
			wantMsg:    "Issue not found",
			wantStatus: 404,
		},
		{
			name:       "validation detail list",
			status:     http.StatusUnprocessableEntity,
			body:       `{"detail":[{"loc":["query","page"],"msg":"page must be >= 1"},{"msg":"bad status"}]}`,
			wantMsg:    "page must be >= 1; bad status",
			wantStatus: 422,
		},
		{
			name:       "no detail falls back to status",
			status:     http.StatusInternalServerError,
			body:       `oops`,
			wantMsg:    "GET /issues/5: 500 Internal Server Error",
			wantStatus: 500,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})
			_, err := c.Get(context.Background(), 5)
			var te *TransportError
			if !errors.As(err, &te) {
				t.Fatalf("expected *TransportError, got %T %v", err, err)
			}
			if te.Message != tc.wantMsg {
				t.Fatalf("expected message %q, got %q", tc.wantMsg, te.Message)
			}
			if te.StatusCode != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, te.StatusCode)
			}
		})
	}
}

func TestErrors_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c, err := New(base, WithTimeout(2*time.Second))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.Assignees(context.Background())
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %T %v", err, err)
	}
	if te.StatusCode != 0 || te.Err == nil || strings.TrimSpace(te.Message) == "" {
		t.Fatalf("unexpected network error shape: %+v", te)
	}
}

func TestErrors_DecodeFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"not-a-number"}`)
	})
	_, err := c.Get(context.Background(), 1)
	var te *TransportError
	if !errors.As(err, &te) || !strings.HasPrefix(te.Message, "decode response:") {
		t.Fatalf("expected decode TransportError, got %v", err)
	}
}

func TestNew_RejectsRelativeBaseURL(t *testing.T) {
	if _, err := New("localhost:8000/api"); err == nil {
		t.Fatalf("expected error for relative base url")
	}
	c, err := New("http://example.test/api/")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.BaseURL() != "http://example.test/api" {
		t.Fatalf("expected trailing slash trimmed, got %q", c.BaseURL())
	}
}

func TestWithTimeout_CopiesHTTPClient(t *testing.T) {
	shared := &http.Client{}

	after, err := New("http://example.test", WithHTTPClient(shared), WithTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if shared.Timeout != 0 {
		t.Fatalf("shared client was modified: timeout=%v", shared.Timeout)
	}
	if after.httpClient == shared || after.httpClient.Timeout != 5*time.Second {
		t.Fatalf("expected a copy with a 5s timeout, got %v", after.httpClient.Timeout)
	}

	before, err := New("http://example.test", WithTimeout(2*time.Second), WithHTTPClient(shared))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if before.httpClient.Timeout != 2*time.Second {
		t.Fatalf("timeout given before the HTTP client was lost: %v", before.httpClient.Timeout)
	}

	none, err := New("http://example.test", WithHTTPClient(shared))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if none.httpClient != shared {
		t.Fatalf("expected the given client to be used as is without a timeout")
	}
}

func TestServerDetail(t *testing.T) {
	cases := map[string]string{
		`{"detail":"x"}`:           "x",
		`{"detail":[{"msg":"a"}]}`: "a",
		`{"detail":{"nested":1}}`:  "",
		`{}`:                       "",
		`not json`:                 "",
		`{"detail":"  padded  "}`:  "padded",
	}
	for in, want := range cases {
		if got := serverDetail([]byte(in)); got != want {
			t.Fatalf("serverDetail(%s): expected %q, got %q", in, want, got)
		}
	}
}
