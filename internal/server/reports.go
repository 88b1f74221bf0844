package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/balkashynov/punch/internal/auth"
	"github.com/balkashynov/punch/internal/parser"
	"github.com/balkashynov/punch/internal/report"
)

// reportSubject resolves whose report is requested. Reports always cover the
// caller's scope. Only admins may name another user, and only one who has
// worked in that scope.
func (s *Server) reportSubject(c *gin.Context) (report.Subject, bool) {
	owner := ownerFrom(c)
	sub := report.Subject{UserID: owner.UserID, Scope: owner.Scope}
	raw := c.Query("userId")
	if raw == "" {
		return sub, true
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid userId"})
		return sub, false
	}
	if uint(id) == owner.UserID {
		return sub, true
	}
	if c.GetString(ctxRole) != auth.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to view other users"})
		return sub, false
	}

	sub.UserID = uint(id)
	member, err := s.reports.Member(c.Request.Context(), sub)
	if err != nil {
		s.fail(c, err)
		return sub, false
	}
	if !member {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such user in this scope"})
		return sub, false
	}
	return sub, true
}

func (s *Server) handleDailyReport(c *gin.Context) {
	sub, ok := s.reportSubject(c)
	if !ok {
		return
	}
	period, err := parser.ParseMonthYear(c.Query("month"), c.Query("year"), s.now().In(s.trackers.Location()))
	if err != nil {
		s.logger.Debug("defaulting report period", "err", err, "user", sub.UserID)
	}

	series, err := s.reports.Daily(c.Request.Context(), sub, period.Month, period.Year)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":     sub.UserID,
		"month":       int(period.Month),
		"year":        period.Year,
		"total_hours": report.TotalHours(series),
		"series":      series,
	})
}

func (s *Server) handleWeeklyReport(c *gin.Context) {
	sub, ok := s.reportSubject(c)
	if !ok {
		return
	}
	period, err := parser.ParseISOWeek(c.Query("week"), c.Query("year"), s.now().In(s.trackers.Location()))
	if err != nil {
		s.logger.Debug("defaulting report period", "err", err, "user", sub.UserID)
	}

	series, err := s.reports.Weekly(c.Request.Context(), sub, period.Year, period.Week)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":     sub.UserID,
		"week":        period.Week,
		"year":        period.Year,
		"total_hours": report.TotalHours(series),
		"series":      series,
	})
}

func (s *Server) handleMonthlyReport(c *gin.Context) {
	sub, ok := s.reportSubject(c)
	if !ok {
		return
	}
	period, err := parser.ParseMonthYear("", c.Query("year"), s.now().In(s.trackers.Location()))
	if err != nil {
		s.logger.Debug("defaulting report period", "err", err, "user", sub.UserID)
	}

	series, err := s.reports.Monthly(c.Request.Context(), sub, period.Year)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":     sub.UserID,
		"year":        period.Year,
		"total_hours": report.TotalHours(series),
		"series":      series,
	})
}
