package models

import (
	"time"

	"gorm.io/gorm"
)

// TimeTracker is one clock-in to clock-out interval for a user
type TimeTracker struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	OwnerID uint       `gorm:"not null;index" json:"owner_id"`
	Scope   string     `gorm:"size:64;not null;default:'';index;<-:create" json:"scope"` // tenant, written once
	StartAt time.Time  `gorm:"not null;index;<-:create" json:"start_at"`
	EndAt   *time.Time `json:"end_at"` // nil while clocked in

	// ISO week bucket of StartAt, written once at creation. Year is the ISO
	// year that owns Week, not the calendar year: 2024-12-30 is week 1 of
	// 2025.
	Week int `gorm:"not null;index:idx_time_trackers_week,priority:2;<-:create" json:"week"`
	Year int `gorm:"not null;index:idx_time_trackers_week,priority:1;<-:create" json:"year"`

	// Relationships
	Items []TrackerItem `gorm:"foreignKey:TrackerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// IsOpen reports whether the tracker has not been clocked out yet.
func (t *TimeTracker) IsOpen() bool {
	return t.EndAt == nil
}

// Close stamps the end time. An end time at or before StartAt collapses to
// StartAt so the duration is zero rather than negative.
func (t *TimeTracker) Close(at time.Time) {
	if !at.After(t.StartAt) {
		at = t.StartAt
	}
	t.EndAt = &at
}

// Duration returns the worked time of a closed tracker. ok is false while
// the tracker is open.
func (t *TimeTracker) Duration() (d time.Duration, ok bool) {
	if t.EndAt == nil {
		return 0, false
	}
	d = t.EndAt.Sub(t.StartAt)
	if d < 0 {
		d = 0
	}
	return d, true
}

// TrackerItem records progress on a task during a tracker
type TrackerItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TrackerID uint   `gorm:"not null;uniqueIndex:idx_tracker_items_task" json:"tracker_id"`
	TaskID    uint   `gorm:"not null;uniqueIndex:idx_tracker_items_task" json:"task_id"`
	Progress  int    `gorm:"not null;default:0" json:"progress"` // percent, 0-100
	Note      string `json:"note"`

	Task Task `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"task"`
}
