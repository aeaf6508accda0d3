package repository

import (
	"context"
	"errors"

	"taskmind/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist. Repositories
// return it for missing rows so services can distinguish absence from failure.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a uniqueness constraint is violated.
var ErrDuplicate = errors.New("already exists")

// TaskFilter narrows a task listing. Zero values mean no constraint.
type TaskFilter struct {
	Status   domain.TaskStatus
	Priority domain.TaskPriority
}

// TaskSort orders a task listing. SortBy must be one of the whitelisted
// column names; the default is newest first.
type TaskSort struct {
	SortBy    string
	Ascending bool
}

// TaskRepository defines persistence operations for Task entities. Every
// operation is scoped to the owning user.
type TaskRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, task *domain.Task) (int64, error)
	Get(ctx context.Context, userID, id int64) (*domain.Task, error)
	List(ctx context.Context, userID int64, filter TaskFilter, sort TaskSort) ([]domain.Task, error)
	Update(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Delete(ctx context.Context, userID, id int64) error
}
