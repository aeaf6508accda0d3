package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskmind/internal/domain"
	"taskmind/internal/repository"
)

// TaskInput carries the client-supplied fields of a task.
type TaskInput struct {
	Title    string
	Content  string
	Status   domain.TaskStatus
	Priority domain.TaskPriority
	DueDate  time.Time
}

// TaskService coordinates task operations for a single owner.
type TaskService interface {
	CreateTask(ctx context.Context, userID int64, input TaskInput) (*domain.Task, error)
	GetTask(ctx context.Context, userID, id int64) (*domain.Task, error)
	ListTasks(ctx context.Context, userID int64, filter repository.TaskFilter, sort repository.TaskSort) ([]domain.Task, error)
	UpdateTask(ctx context.Context, userID, id int64, input TaskInput) (*domain.Task, error)
	DeleteTask(ctx context.Context, userID, id int64) error
}

type taskService struct {
	tasks repository.TaskRepository
}

func NewTaskService(tasks repository.TaskRepository) TaskService {
	return &taskService{tasks: tasks}
}

func validateTaskInput(input *TaskInput) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Content = strings.TrimSpace(input.Content)

	if input.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if input.Content == "" {
		return fmt.Errorf("%w: content is required", ErrValidation)
	}
	if input.DueDate.IsZero() {
		return fmt.Errorf("%w: due date is required", ErrValidation)
	}
	if input.Status == "" {
		input.Status = domain.TaskStatusPending
	}
	if !input.Status.Valid() {
		return fmt.Errorf("%w: invalid status %q", ErrValidation, input.Status)
	}
	if input.Priority == "" {
		input.Priority = domain.TaskPriorityMedium
	}
	if !input.Priority.Valid() {
		return fmt.Errorf("%w: invalid priority %q", ErrValidation, input.Priority)
	}
	return nil
}

func (s *taskService) CreateTask(ctx context.Context, userID int64, input TaskInput) (*domain.Task, error) {
	if err := validateTaskInput(&input); err != nil {
		return nil, err
	}

	task := &domain.Task{
		UserID:   userID,
		Title:    input.Title,
		Content:  input.Content,
		Status:   input.Status,
		Priority: input.Priority,
		DueDate:  input.DueDate,
	}
	if _, err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) GetTask(ctx context.Context, userID, id int64) (*domain.Task, error) {
	return s.tasks.Get(ctx, userID, id)
}

func (s *taskService) ListTasks(ctx context.Context, userID int64, filter repository.TaskFilter, sort repository.TaskSort) ([]domain.Task, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, filter.Status)
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		return nil, fmt.Errorf("%w: invalid priority %q", ErrValidation, filter.Priority)
	}
	return s.tasks.List(ctx, userID, filter, sort)
}

func (s *taskService) UpdateTask(ctx context.Context, userID, id int64, input TaskInput) (*domain.Task, error) {
	if err := validateTaskInput(&input); err != nil {
		return nil, err
	}

	task := &domain.Task{
		ID:       id,
		UserID:   userID,
		Title:    input.Title,
		Content:  input.Content,
		Status:   input.Status,
		Priority: input.Priority,
		DueDate:  input.DueDate,
	}
	return s.tasks.Update(ctx, task)
}

func (s *taskService) DeleteTask(ctx context.Context, userID, id int64) error {
	return s.tasks.Delete(ctx, userID, id)
}
