package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/balkashynov/punch/internal/tracker"
)

const flashCookie = "flash"

// success answers a mutation. Form posts carrying a redirect field are sent
// back to that page with the toast in a flash cookie.
func (s *Server) success(c *gin.Context, status int, toast string, body gin.H) {
	if s.redirectBack(c, toast) {
		return
	}
	if body == nil {
		body = gin.H{}
	}
	body["toast"] = toast
	c.JSON(status, body)
}

// fail maps a service error to a status and a user facing toast.
func (s *Server) fail(c *gin.Context, err error) {
	status, toast := classify(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			"err", err,
			"path", c.FullPath(),
			"request_id", c.GetString(ctxRequestID),
		)
	}
	if s.redirectBack(c, toast) {
		return
	}
	c.JSON(status, gin.H{"error": toast, "toast": toast})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, tracker.ErrConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, tracker.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, tracker.ErrValidation):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "something went wrong, please try again"
	}
}

func (s *Server) redirectBack(c *gin.Context, toast string) bool {
	target := c.PostForm("redirect")
	if !safeRedirect(target) {
		return false
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, toast, 60, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, target)
	return true
}

// safeRedirect accepts local absolute paths only.
func safeRedirect(target string) bool {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return false
	}
	return !strings.ContainsAny(target, "\\\r\n")
}
