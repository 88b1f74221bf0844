package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/balkashynov/punch/internal/models"
)

// CreateTaskRequest holds the data needed to create a new task
type CreateTaskRequest struct {
	OwnerID uint
	Title   string
	Project string
	Note    string
}

// CreateTask creates a new task for the owner
func (s *Store) CreateTask(ctx context.Context, req CreateTaskRequest) (*models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	task := models.Task{
		OwnerID: req.OwnerID,
		Title:   title,
		Project: strings.TrimSpace(req.Project),
		Status:  models.TaskStatusTodo,
		Note:    req.Note,
	}
	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// GetTasks returns the owner's tasks, newest first
func (s *Store) GetTasks(ctx context.Context, ownerID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("id DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTaskByID retrieves one of the owner's tasks
func (s *Store) GetTaskByID(ctx context.Context, ownerID, id uint) (*models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("task #%d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// MarkTaskDone marks a task as completed
func (s *Store) MarkTaskDone(ctx context.Context, ownerID, id uint) (*models.Task, error) {
	task, err := s.GetTaskByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if task.Status == models.TaskStatusDone {
		return nil, fmt.Errorf("task #%d is already completed", id)
	}

	task.Status = models.TaskStatusDone
	if err := s.db.WithContext(ctx).Save(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}
