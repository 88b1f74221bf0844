package models

import (
	"time"

	"gorm.io/gorm"
)

// Task statuses
const (
	TaskStatusTodo = "todo"
	TaskStatusDone = "done"
)

// Task is a unit of work that tracker items report progress against
type Task struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	OwnerID uint   `gorm:"not null;index" json:"owner_id"`
	Title   string `gorm:"not null" json:"title"`
	Project string `json:"project"`
	Status  string `gorm:"default:todo" json:"status"` // todo, done
	Note    string `json:"note"`
}
