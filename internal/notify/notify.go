// Package notify publishes tracker change events to live dashboards.
package notify

import (
	"context"
	"fmt"
	"time"
)

// Change actions
const (
	ActionClockIn  = "clock-in"
	ActionClockOut = "clock-out"
	ActionDelete   = "delete"
	ActionItems    = "items"
)

// Publisher delivers an event to whoever listens on topic. Delivery is best
// effort: there is no acknowledgment and no retry.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// Change is the payload published after a tracker state transition.
type Change struct {
	Action    string    `json:"action"`
	TrackerID uint      `json:"tracker_id"`
	UserID    uint      `json:"user_id"`
	Scope     string    `json:"scope,omitempty"`
	At        time.Time `json:"at"`
}

// TrackerTopic is the per-user topic fired on any change to their trackers.
func TrackerTopic(userID uint) string {
	return fmt.Sprintf("tracker-%d-changed", userID)
}

// WorkStatusTopic is the tenant-wide topic fired when anyone in scope clocks
// in, clocks out or deletes a tracker.
func WorkStatusTopic(scope string) string {
	return scope + "-employee-work-status-change"
}

// Discard drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(context.Context, string, any) error { return nil }
