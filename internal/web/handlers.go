package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"issuetrack/internal/model"
	"issuetrack/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type listParams struct {
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"page_size,default=10" binding:"min=1,max=100"`
	Title    string `form:"title"`
	Status   string `form:"status" binding:"omitempty,oneof=open in_progress closed"`
	Priority string `form:"priority" binding:"omitempty,oneof=low medium high critical"`
	Assignee string `form:"assignee"`
	SortBy   string `form:"sort_by,default=updated_at"`
	SortDesc bool   `form:"sort_desc,default=true"`
}

func (p listParams) query() model.CanonicalQuery {
	q := model.CanonicalQuery{
		Title:    p.Title,
		Assignee: p.Assignee,
		Page:     p.Page,
		PageSize: p.PageSize,
		SortBy:   model.SortField(p.SortBy),
		SortDesc: p.SortDesc,
	}
	if p.Status != "" {
		q.Status = model.StatusPtr(model.Status(p.Status))
	}
	if p.Priority != "" {
		q.Priority = model.PriorityPtr(model.Priority(p.Priority))
	}
	if !q.SortBy.Valid() {
		q.SortBy = model.SortByUpdatedAt
	}
	return q
}

type createRequest struct {
	Title       string  `json:"title" binding:"required,max=200"`
	Description *string `json:"description" binding:"omitnil,max=2000"`
	Status      *string `json:"status" binding:"omitnil,oneof=open in_progress closed"`
	Priority    *string `json:"priority" binding:"omitnil,oneof=low medium high critical"`
	Assignee    *string `json:"assignee" binding:"omitnil,max=100"`
}

type updateRequest struct {
	Title       *string `json:"title" binding:"omitnil,min=1,max=200"`
	Description *string `json:"description" binding:"omitnil,max=2000"`
	Status      *string `json:"status" binding:"omitnil,oneof=open in_progress closed"`
	Priority    *string `json:"priority" binding:"omitnil,oneof=low medium high critical"`
	Assignee    *string `json:"assignee" binding:"omitnil,max=100"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": apiTitle, "version": apiVersion})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, model.Health{Status: "ok"})
}

func (s *Server) handleListIssues(c *gin.Context) {
	var p listParams
	if err := c.ShouldBindQuery(&p); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": validationDetails("query", err)})
		return
	}
	q := p.query()
	items, total, err := s.store.List(c.Request.Context(), q)
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.IssuePage{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: model.PageState{Size: q.PageSize, TotalItems: total}.TotalPages(),
	})
}

func (s *Server) handleGetIssue(c *gin.Context) {
	id, ok := issueID(c)
	if !ok {
		return
	}
	is, err := s.store.Get(c.Request.Context(), id)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, is)
}

func (s *Server) handleCreateIssue(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": validationDetails("body", err)})
		return
	}
	in := model.IssueCreate{
		Title:       req.Title,
		Description: req.Description,
		Assignee:    req.Assignee,
	}
	if req.Status != nil {
		in.Status = model.StatusPtr(model.Status(*req.Status))
	}
	if req.Priority != nil {
		in.Priority = model.PriorityPtr(model.Priority(*req.Priority))
	}
	is, err := s.store.Create(c.Request.Context(), in)
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, is)
}

// handleUpdateIssue applies only the fields present in the body. An explicit null
// clears description or assignee.
func (s *Server) handleUpdateIssue(c *gin.Context) {
	id, ok := issueID(c)
	if !ok {
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		s.internalError(c, err)
		return
	}
	var (
		req     updateRequest
		present map[string]json.RawMessage
	)
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": validationDetails("body", err)})
		return
	}
	_ = json.Unmarshal(body, &present)
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": validationDetails("body", err)})
		return
	}

	p := store.Patch{
		Title:            req.Title,
		Description:      req.Description,
		Assignee:         req.Assignee,
		ClearDescription: isNull(present["description"]),
		ClearAssignee:    isNull(present["assignee"]),
	}
	if req.Status != nil {
		p.Status = model.StatusPtr(model.Status(*req.Status))
	}
	if req.Priority != nil {
		p.Priority = model.PriorityPtr(model.Priority(*req.Priority))
	}
	is, err := s.store.Update(c.Request.Context(), id, p)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, is)
}

func (s *Server) handleAssignees(c *gin.Context) {
	as, err := s.store.Assignees(c.Request.Context())
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, as)
}

func issueID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []detailItem{{
			Loc:  []string{"path", "issue_id"},
			Msg:  "value is not a valid integer",
			Type: "type_error.integer",
		}}})
		return 0, false
	}
	return id, true
}

func isNull(raw json.RawMessage) bool {
	return raw != nil && bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (s *Server) storeError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Issue not found"})
		return
	}
	s.internalError(c, err)
}

func (s *Server) internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal Server Error"})
}
