package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"issuetrack/internal/model"
)

const issueColumns = `id, title, description, status, priority, assignee, created_at, updated_at`

// Patch is a partial update. Nil fields are left alone; Clear* sets the optional
// text field back to absent.
type Patch struct {
	Title       *string
	Description *string
	Status      *model.Status
	Priority    *model.Priority
	Assignee    *string

	ClearDescription bool
	ClearAssignee    bool
}

// Empty reports whether p changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil &&
		p.Assignee == nil && !p.ClearDescription && !p.ClearAssignee
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIssue(r rowScanner) (model.Issue, error) {
	var (
		is       model.Issue
		desc     sql.NullString
		assignee sql.NullString
		status   string
		priority string
	)
	if err := r.Scan(&is.ID, &is.Title, &desc, &status, &priority, &assignee, &is.CreatedAt, &is.UpdatedAt); err != nil {
		return model.Issue{}, err
	}
	is.Status = model.Status(status)
	is.Priority = model.Priority(priority)
	if desc.Valid {
		is.Description = &desc.String
	}
	if assignee.Valid {
		is.Assignee = &assignee.String
	}
	return is, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func (s *Store) Get(ctx context.Context, id int) (model.Issue, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+issueColumns+` FROM issues WHERE id = ?`, id)
	is, err := scanIssue(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Issue{}, ErrNotFound
	}
	if err != nil {
		return model.Issue{}, fmt.Errorf("get issue %d: %w", id, err)
	}
	return is, nil
}

// Create stores in with status open and priority medium unless given.
func (s *Store) Create(ctx context.Context, in model.IssueCreate) (model.Issue, error) {
	status := model.StatusOpen
	if in.Status != nil && *in.Status != "" {
		status = *in.Status
	}
	priority := model.PriorityMedium
	if in.Priority != nil && *in.Priority != "" {
		priority = *in.Priority
	}
	now := s.timestamp()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO issues(title, description, status, priority, assignee, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?, ?)`,
		in.Title, nullable(in.Description), string(status), string(priority), nullable(in.Assignee), now, now,
	)
	if err != nil {
		return model.Issue{}, fmt.Errorf("insert issue: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Issue{}, err
	}
	s.log.Debug("issue created", "id", id)
	return s.Get(ctx, int(id))
}

// Update applies p. updated_at moves only when p changes something.
func (s *Store) Update(ctx context.Context, id int, p Patch) (model.Issue, error) {
	if p.Empty() {
		return s.Get(ctx, id)
	}
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if p.Title != nil {
		set("title", *p.Title)
	}
	switch {
	case p.ClearDescription:
		set("description", nil)
	case p.Description != nil:
		set("description", *p.Description)
	}
	if p.Status != nil {
		set("status", string(*p.Status))
	}
	if p.Priority != nil {
		set("priority", string(*p.Priority))
	}
	switch {
	case p.ClearAssignee:
		set("assignee", nil)
	case p.Assignee != nil:
		set("assignee", *p.Assignee)
	}
	set("updated_at", s.timestamp())
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, `UPDATE issues SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return model.Issue{}, fmt.Errorf("update issue %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Issue{}, ErrNotFound
	}
	s.log.Debug("issue updated", "id", id, "fields", len(sets)-1)
	return s.Get(ctx, id)
}

// sortExpr maps a sort field to its ORDER BY expression. Unknown fields sort by
// updated_at.
func sortExpr(f model.SortField) string {
	switch f {
	case model.SortByID:
		return "id"
	case model.SortByTitle:
		return "lower(title)"
	case model.SortByStatus:
		return "status"
	case model.SortByPriority:
		return `CASE priority WHEN 'critical' THEN 4 WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END`
	case model.SortByAssignee:
		return "COALESCE(assignee, '')"
	case model.SortByCreatedAt:
		return "created_at"
	default:
		return "updated_at"
	}
}

// List returns one page of issues matching q and the total number of matches.
// Title and assignee match case-insensitively as substrings; ties sort by id.
func (s *Store) List(ctx context.Context, q model.CanonicalQuery) ([]model.Issue, int, error) {
	var (
		where []string
		args  []any
	)
	if q.Title != "" {
		where = append(where, "instr(lower(title), lower(?)) > 0")
		args = append(args, q.Title)
	}
	if q.Status != nil && *q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(*q.Status))
	}
	if q.Priority != nil && *q.Priority != "" {
		where = append(where, "priority = ?")
		args = append(args, string(*q.Priority))
	}
	if q.Assignee != "" {
		where = append(where, "assignee IS NOT NULL AND instr(lower(assignee), lower(?)) > 0")
		args = append(args, q.Assignee)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM issues`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count issues: %w", err)
	}

	page, size := q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = model.DefaultPageSize
	}
	dir := "ASC"
	if q.SortDesc {
		dir = "DESC"
	}
	query := `SELECT ` + issueColumns + ` FROM issues` + clause +
		` ORDER BY ` + sortExpr(q.SortBy) + ` ` + dir + `, id ASC LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, size, (page-1)*size)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list issues: %w", err)
	}
	defer rows.Close()

	items := []model.Issue{}
	for rows.Next() {
		is, err := scanIssue(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, is)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Assignees returns every distinct non-empty assignee, sorted.
func (s *Store) Assignees(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT assignee FROM issues WHERE assignee IS NOT NULL AND assignee != '' ORDER BY assignee`)
	if err != nil {
		return nil, fmt.Errorf("list assignees: %w", err)
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
