package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/balkashynov/punch/internal/parser"
	"github.com/balkashynov/punch/internal/tracker"
)

type itemRequest struct {
	TaskID   uint   `json:"task_id" form:"task_id" binding:"required"`
	Progress int    `json:"progress" form:"progress"`
	Note     string `json:"note" form:"note"`
}

func (s *Server) handleClockIn(c *gin.Context) {
	t, err := s.trackers.ClockIn(c.Request.Context(), ownerFrom(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.success(c, http.StatusCreated, "Clocked in", gin.H{"tracker": t})
}

func (s *Server) handleClockOut(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := s.trackers.ClockOut(c.Request.Context(), ownerFrom(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	d, _ := t.Duration()
	toast := fmt.Sprintf("Clocked out after %.1fh", d.Hours())
	s.success(c, http.StatusOK, toast, gin.H{"tracker": t})
}

func (s *Server) handleDeleteTracker(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.trackers.Delete(c.Request.Context(), ownerFrom(c), id); err != nil {
		s.fail(c, err)
		return
	}
	s.success(c, http.StatusOK, "Tracker deleted", gin.H{"id": id})
}

func (s *Server) handleActiveTracker(c *gin.Context) {
	t, err := s.trackers.Active(c.Request.Context(), ownerFrom(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	// tracker is null when clocked out
	c.JSON(http.StatusOK, gin.H{"tracker": t})
}

func (s *Server) handleGetTracker(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := s.trackers.Get(c.Request.Context(), ownerFrom(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracker": t})
}

// handleListTrackers lists by ISO week when week is given, else by month.
func (s *Server) handleListTrackers(c *gin.Context) {
	now := s.now().In(s.trackers.Location())
	var filter tracker.Filter

	if c.Query("week") != "" {
		period, err := parser.ParseISOWeek(c.Query("week"), c.Query("year"), now)
		if err != nil {
			s.logger.Debug("defaulting tracker list period", "err", err)
		}
		filter.Year, filter.Week = period.Year, period.Week
	} else {
		period, err := parser.ParseMonthYear(c.Query("month"), c.Query("year"), now)
		if err != nil {
			s.logger.Debug("defaulting tracker list period", "err", err)
		}
		filter.Year, filter.Month = period.Year, period.Month
	}

	trackers, err := s.trackers.List(c.Request.Context(), ownerFrom(c), filter)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"trackers": trackers,
		"count":    len(trackers),
		"year":     filter.Year,
		"month":    int(filter.Month),
		"week":     filter.Week,
	})
}

func (s *Server) handleAttachItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req itemRequest
	if err := c.ShouldBind(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", tracker.ErrValidation, err))
		return
	}

	item, err := s.trackers.AttachItem(c.Request.Context(), ownerFrom(c), id, tracker.ItemInput{
		TaskID:   req.TaskID,
		Progress: req.Progress,
		Note:     req.Note,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	s.success(c, http.StatusCreated, "Progress saved", gin.H{"item": item})
}

func (s *Server) handleRemoveItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseID(c, "itemId")
	if !ok {
		return
	}
	if err := s.trackers.RemoveItem(c.Request.Context(), ownerFrom(c), id, itemID); err != nil {
		s.fail(c, err)
		return
	}
	s.success(c, http.StatusOK, "Item removed", gin.H{"id": itemID})
}
