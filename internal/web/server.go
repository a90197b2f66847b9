// Package web serves the issue store over the REST contract the client speaks.
package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"issuetrack/internal/logging"
	"issuetrack/internal/model"
	"issuetrack/internal/store"

	"github.com/gin-gonic/gin"
)

const (
	apiTitle   = "Issue Tracker API"
	apiVersion = "1.0.0"
)

// IssueStore is what the handlers need from storage.
type IssueStore interface {
	List(ctx context.Context, q model.CanonicalQuery) ([]model.Issue, int, error)
	Get(ctx context.Context, id int) (model.Issue, error)
	Create(ctx context.Context, in model.IssueCreate) (model.Issue, error)
	Update(ctx context.Context, id int, p store.Patch) (model.Issue, error)
	Assignees(ctx context.Context) ([]string, error)
}

type ServerConfig struct {
	Addr string
	// AllowOrigins lists browser origins allowed cross-origin access.
	AllowOrigins []string
	Logger       *logging.Logger
}

// DefaultAllowOrigins is the browser frontend's dev server.
var DefaultAllowOrigins = []string{"http://localhost:4200"}

type Server struct {
	cfg    ServerConfig
	store  IssueStore
	log    *logging.Logger
	router *gin.Engine
}

func NewServer(cfg ServerConfig, st IssueStore) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	if cfg.Addr == "" {
		return nil, errors.New("web: addr is empty")
	}
	if st == nil {
		return nil, errors.New("web: store is nil")
	}
	if cfg.AllowOrigins == nil {
		cfg.AllowOrigins = DefaultAllowOrigins
	}
	registerFieldNames()

	router := gin.New()
	s := &Server{cfg: cfg, store: st, log: cfg.Logger, router: router}

	router.Use(gin.Recovery(), requestID(), s.accessLog(), cors(cfg.AllowOrigins))
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
	})
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"detail": "Method Not Allowed"})
	})

	router.GET("/", s.handleRoot)
	router.GET("/health", s.handleHealth)
	router.GET("/issues", s.handleListIssues)
	router.POST("/issues", s.handleCreateIssue)
	router.GET("/issues/:id", s.handleGetIssue)
	router.PUT("/issues/:id", s.handleUpdateIssue)
	router.GET("/assignees", s.handleAssignees)
	return s, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is done, then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("shutting down", "addr", s.cfg.Addr)
		return srv.Shutdown(shutdownCtx)
	}
}
