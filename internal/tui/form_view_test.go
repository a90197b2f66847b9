package tui

import (
	"strings"
	"testing"

	"issuetrack/internal/issueclient"
	"issuetrack/internal/model"

	"github.com/google/go-cmp/cmp"
)

func TestCreateForm_ValidatesThenCreates(t *testing.T) {
	api := newFakeAPI(3)
	m := newTestModel(t, api)

	m = press(t, m, "n")
	if m.view != viewForm || m.form.editID != 0 || m.form.focus != fieldTitle {
		t.Fatalf("expected blank create form, got view=%v editID=%d focus=%d", m.view, m.form.editID, m.form.focus)
	}

	m = press(t, m, "ctrl+s")
	if got := m.form.errs.For("title"); got != "Title is required" {
		t.Fatalf("expected title error, got %q", got)
	}
	if len(api.created) != 0 {
		t.Fatalf("invalid form must not submit")
	}
	if v := plainView(m); !strings.Contains(v, "Title is required") {
		t.Fatalf("expected error in view:\n%s", v)
	}

	m = typeText(t, m, "New bug")
	if m.form.errs != nil {
		t.Fatalf("expected errors to clear while typing, got %v", m.form.errs)
	}

	m = press(t, m, "ctrl+s")
	want := []model.IssueCreate{{
		Title:    "New bug",
		Status:   model.StatusPtr(model.StatusOpen),
		Priority: model.PriorityPtr(model.PriorityMedium),
	}}
	if diff := cmp.Diff(want, api.created); diff != "" {
		t.Fatalf("create payload mismatch (-want +got):\n%s", diff)
	}
	if m.view != viewDetail || m.detail == nil || m.detail.Title != "New bug" {
		t.Fatalf("expected detail of the new issue, got view=%v", m.view)
	}
	if m.minibufferText != "Issue created successfully!" {
		t.Fatalf("unexpected notification %q", m.minibufferText)
	}
}

func TestEditForm_SendsWholeDraft(t *testing.T) {
	api := newFakeAPI(3)
	m := newTestModel(t, api)

	m = press(t, m, "e")
	if m.view != viewForm || m.form.loading || m.form.editID != 3 {
		t.Fatalf("expected loaded edit form for #3, got view=%v loading=%v id=%d", m.view, m.form.loading, m.form.editID)
	}
	if got := m.form.title.Value(); got != "Issue 3" {
		t.Fatalf("expected title prefilled, got %q", got)
	}
	if v := plainView(m); !strings.Contains(v, "Edit issue #3") || !strings.Contains(v, "Save changes") {
		t.Fatalf("unexpected edit view:\n%s", v)
	}

	// title -> description -> status; closed wraps to open.
	m = press(t, m, "tab", "tab", "right", "ctrl+s")

	want := []model.IssueUpdate{{
		Title:       model.StringPtr("Issue 3"),
		Description: model.StringPtr("Body of issue 3"),
		Status:      model.StatusPtr(model.StatusOpen),
		Priority:    model.PriorityPtr(model.PriorityHigh),
	}}
	if diff := cmp.Diff(want, api.updated); diff != "" {
		t.Fatalf("update payload mismatch (-want +got):\n%s", diff)
	}
	if m.view != viewDetail || m.detail.Status != model.StatusOpen {
		t.Fatalf("expected detail with the saved status, got view=%v", m.view)
	}
	if m.minibufferText != "Issue updated successfully!" {
		t.Fatalf("unexpected notification %q", m.minibufferText)
	}
}

func TestEditForm_LoadErrorReturns(t *testing.T) {
	api := newFakeAPI(3)
	m := newTestModel(t, api)
	api.remove(3)

	m = press(t, m, "e")
	if m.view != viewList {
		t.Fatalf("expected list view, got %v", m.view)
	}
	if want := "Error loading issue for editing: Issue not found"; m.minibufferText != want {
		t.Fatalf("expected %q, got %q", want, m.minibufferText)
	}
}

func TestCreateForm_SaveErrorStaysOnForm(t *testing.T) {
	api := newFakeAPI(1)
	api.createErr = &issueclient.TransportError{StatusCode: 422, Message: "Title must not be blank"}
	m := newTestModel(t, api)

	m = press(t, m, "n")
	m = typeText(t, m, "x")
	m = press(t, m, "ctrl+s")

	if m.view != viewForm || m.form.submitting {
		t.Fatalf("expected to stay on an idle form, got view=%v submitting=%v", m.view, m.form.submitting)
	}
	if want := "Error creating issue: Title must not be blank"; m.minibufferText != want {
		t.Fatalf("expected %q, got %q", want, m.minibufferText)
	}
	if got := m.form.title.Value(); got != "x" {
		t.Fatalf("expected input kept, got %q", got)
	}
}

func TestForm_EscReturnsWhereItCameFrom(t *testing.T) {
	m := newTestModel(t, newFakeAPI(2))

	m = press(t, m, "n", "esc")
	if m.view != viewList {
		t.Fatalf("expected list, got %v", m.view)
	}

	m = press(t, m, "enter", "e")
	if m.formReturn != viewDetail {
		t.Fatalf("expected form to return to detail, got %v", m.formReturn)
	}
	m = press(t, m, "esc")
	if m.view != viewDetail {
		t.Fatalf("expected detail, got %v", m.view)
	}
}

func TestCycleValue_Wraps(t *testing.T) {
	s := model.Statuses()
	if got := cycleValue(model.StatusClosed, s, false); got != model.StatusOpen {
		t.Fatalf("expected open, got %v", got)
	}
	if got := cycleValue(model.StatusOpen, s, true); got != model.StatusClosed {
		t.Fatalf("expected closed, got %v", got)
	}
	if got := cycleValue(model.Status("bogus"), s, false); got != model.StatusOpen {
		t.Fatalf("expected unknown to start at open, got %v", got)
	}
}
