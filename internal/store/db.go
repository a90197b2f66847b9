// Package store is the reference server's issue storage, backed by SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"issuetrack/internal/logging"
	"issuetrack/internal/model"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

var ErrNotFound = errors.New("issue not found")

// timeLayout is fixed width in UTC so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

type Options struct {
	// Path is the database file. Empty or MemoryPath keeps everything in memory.
	Path string
	// Seed inserts the sample issues when the database is empty.
	Seed   bool
	Logger *logging.Logger
}

type Store struct {
	db  *sql.DB
	log *logging.Logger
	now func() time.Time

	mu   sync.Mutex
	last time.Time
}

func Open(ctx context.Context, opts Options) (*Store, error) {
	path := strings.TrimSpace(opts.Path)
	memory := path == "" || path == MemoryPath
	if memory {
		path = MemoryPath
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if memory {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s := &Store{db: db, log: opts.Logger, now: time.Now}
	if opts.Seed {
		n, err := s.seedIfEmpty(ctx)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
		if n > 0 {
			s.log.Info("seeded sample issues", "count", n)
		}
	}
	s.log.Debug("store opened", "path", path)
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS issues (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT,
			status TEXT NOT NULL,
			priority TEXT NOT NULL,
			assignee TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_issues_status ON issues(status);`,
		`CREATE INDEX IF NOT EXISTS idx_issues_updated ON issues(updated_at);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// timestamp is strictly increasing so back-to-back writes never tie on updated_at.
func (s *Store) timestamp() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.now().UTC().Truncate(time.Microsecond)
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t.Format(timeLayout)
}

func sampleIssues() []model.IssueCreate {
	issue := func(title, desc string, st model.Status, pr model.Priority, assignee string) model.IssueCreate {
		return model.IssueCreate{
			Title:       title,
			Description: model.StringPtr(desc),
			Status:      model.StatusPtr(st),
			Priority:    model.PriorityPtr(pr),
			Assignee:    model.StringPtr(assignee),
		}
	}
	return []model.IssueCreate{
		issue("Login page not responsive on mobile", "The login form doesn't fit properly on mobile screens", model.StatusOpen, model.PriorityHigh, "john.doe"),
		issue("Add dark mode support", "Users have requested dark mode for better user experience", model.StatusInProgress, model.PriorityMedium, "jane.smith"),
		issue("API rate limiting", "Implement rate limiting to prevent abuse", model.StatusClosed, model.PriorityCritical, "mike.wilson"),
		issue("Update documentation", "User guide needs to be updated with new features", model.StatusOpen, model.PriorityLow, "sarah.johnson"),
	}
}

func (s *Store) seedIfEmpty(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM issues`).Scan(&n); err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	samples := sampleIssues()
	for _, in := range samples {
		if _, err := s.Create(ctx, in); err != nil {
			return 0, err
		}
	}
	return len(samples), nil
}
