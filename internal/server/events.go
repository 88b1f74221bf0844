package server

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/balkashynov/punch/internal/notify"
)

// handleEvents streams the caller's tracker events and their scope's work
// status events as server-sent events until the client goes away.
func (s *Server) handleEvents(c *gin.Context) {
	owner := ownerFrom(c)
	topics := []string{notify.TrackerTopic(owner.UserID)}
	if owner.Scope != "" {
		topics = append(topics, notify.WorkStatusTopic(owner.Scope))
	}
	events, unsubscribe := s.hub.Subscribe(topics...)
	defer unsubscribe()

	keepalive := time.NewTicker(s.keepalive)
	defer keepalive.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"topics": topics})
	c.Writer.Flush()

	s.logger.Debug("event stream opened", "user", owner.UserID, "topics", topics)
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case msg, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(msg.Topic, string(msg.Payload))
			return true
		case <-keepalive.C:
			c.SSEvent("ping", s.now().Unix())
			return true
		}
	})
	s.logger.Debug("event stream closed", "user", owner.UserID)
}
