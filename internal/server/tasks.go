package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/balkashynov/punch/internal/db"
	"github.com/balkashynov/punch/internal/tracker"
)

type taskRequest struct {
	Title   string `json:"title" form:"title" binding:"required"`
	Project string `json:"project" form:"project"`
	Note    string `json:"note" form:"note"`
}

func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.tasks.GetTasks(c.Request.Context(), ownerFrom(c).UserID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks)})
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBind(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", tracker.ErrValidation, err))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		s.fail(c, fmt.Errorf("%w: title is required", tracker.ErrValidation))
		return
	}

	task, err := s.tasks.CreateTask(c.Request.Context(), db.CreateTaskRequest{
		OwnerID: ownerFrom(c).UserID,
		Title:   req.Title,
		Project: req.Project,
		Note:    req.Note,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	s.success(c, http.StatusCreated, fmt.Sprintf("Task #%d created", task.ID), gin.H{"task": task})
}
