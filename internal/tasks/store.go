package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"travel_app_echo/internal/models"
)

// Store keeps scheduled tasks and their run history in the database
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Schedule(ctx context.Context, task *models.ScheduledTask) error {
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to schedule %s: %w", task.TaskName, err)
	}
	return nil
}

// DueTasks returns active tasks due at or before now, oldest first
func (s *Store) DueTasks(ctx context.Context, now time.Time, limit int) ([]models.ScheduledTask, error) {
	var due []models.ScheduledTask
	err := s.db.WithContext(ctx).
		Where("status = ? AND due <= ?", models.ScheduledTaskStatusActive, now).
		Order("due asc").
		Limit(limit).
		Find(&due).Error
	return due, err
}

func (s *Store) RecordRun(ctx context.Context, history *models.ScheduledTaskHistory) error {
	return s.db.WithContext(ctx).Create(history).Error
}

func (s *Store) UpdateTask(ctx context.Context, id uint, updates map[string]interface{}) error {
	return s.db.WithContext(ctx).Model(&models.ScheduledTask{}).Where("id = ?", id).Updates(updates).Error
}

// EnsureRecurring creates an active recurring task named name unless one exists.
// It reports whether a task was created.
func (s *Store) EnsureRecurring(ctx context.Context, name, rule string, args interface{}, maxAttempt int) (*models.ScheduledTask, bool, error) {
	var existing models.ScheduledTask
	err := s.db.WithContext(ctx).
		Where("task_name = ? AND status = ?", name, models.ScheduledTaskStatusActive).
		First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	task, err := BuildScheduledTask(name, args, time.Now(), &rule, models.ScheduledTaskTypeRecurring, maxAttempt)
	if err != nil {
		return nil, false, err
	}
	if err := s.Schedule(ctx, task); err != nil {
		return nil, false, err
	}
	return task, true, nil
}
