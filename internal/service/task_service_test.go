package service

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"taskmind/internal/domain"
	"taskmind/internal/repository"
)

type memoryTaskRepo struct {
	nextID int64
	tasks  map[int64]*domain.Task
}

func newMemoryTaskRepo() *memoryTaskRepo {
	return &memoryTaskRepo{nextID: 1, tasks: make(map[int64]*domain.Task)}
}

func (r *memoryTaskRepo) Init(context.Context) error { return nil }

func (r *memoryTaskRepo) Create(_ context.Context, task *domain.Task) (int64, error) {
	task.ID = r.nextID
	task.CreatedAt = time.Now().UTC()
	task.UpdatedAt = task.CreatedAt
	r.nextID++
	copied := *task
	r.tasks[task.ID] = &copied
	return task.ID, nil
}

func (r *memoryTaskRepo) Get(_ context.Context, userID, id int64) (*domain.Task, error) {
	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return nil, fmt.Errorf("task: %w", repository.ErrNotFound)
	}
	copied := *task
	return &copied, nil
}

func (r *memoryTaskRepo) List(_ context.Context, userID int64, filter repository.TaskFilter, s repository.TaskSort) ([]domain.Task, error) {
	var out []domain.Task
	for _, task := range r.tasks {
		if task.UserID != userID {
			continue
		}
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && task.Priority != filter.Priority {
			continue
		}
		out = append(out, *task)
	}
	sort.Slice(out, func(i, j int) bool {
		var less bool
		switch s.SortBy {
		case "title":
			less = out[i].Title < out[j].Title
		case "dueDate":
			less = out[i].DueDate.Before(out[j].DueDate)
		default:
			// default newest first
			return out[i].ID > out[j].ID
		}
		if s.Ascending {
			return less
		}
		return !less
	})
	return out, nil
}

func (r *memoryTaskRepo) Update(_ context.Context, task *domain.Task) (*domain.Task, error) {
	existing, ok := r.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return nil, fmt.Errorf("update task: %w", repository.ErrNotFound)
	}
	task.CreatedAt = existing.CreatedAt
	task.UpdatedAt = time.Now().UTC()
	copied := *task
	r.tasks[task.ID] = &copied
	return task, nil
}

func (r *memoryTaskRepo) Delete(_ context.Context, userID, id int64) error {
	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return fmt.Errorf("delete task: %w", repository.ErrNotFound)
	}
	delete(r.tasks, id)
	return nil
}

func testInput(title string) TaskInput {
	return TaskInput{
		Title:   title,
		Content: "some content",
		DueDate: time.Now().UTC().Add(48 * time.Hour),
	}
}

func TestCreateTask_Defaults(t *testing.T) {
	svc := NewTaskService(newMemoryTaskRepo())

	task, err := svc.CreateTask(context.Background(), 1, testInput("groceries"))
	require.NoError(t, err)
	require.Equal(t, domain.TaskStatusPending, task.Status)
	require.Equal(t, domain.TaskPriorityMedium, task.Priority)
	require.Equal(t, int64(1), task.UserID)
}

func TestCreateTask_Validation(t *testing.T) {
	svc := NewTaskService(newMemoryTaskRepo())
	ctx := context.Background()

	input := testInput("")
	_, err := svc.CreateTask(ctx, 1, input)
	require.ErrorIs(t, err, ErrValidation)

	input = testInput("title")
	input.Content = ""
	_, err = svc.CreateTask(ctx, 1, input)
	require.ErrorIs(t, err, ErrValidation)

	input = testInput("title")
	input.DueDate = time.Time{}
	_, err = svc.CreateTask(ctx, 1, input)
	require.ErrorIs(t, err, ErrValidation)

	input = testInput("title")
	input.Status = "nonsense"
	_, err = svc.CreateTask(ctx, 1, input)
	require.ErrorIs(t, err, ErrValidation)

	input = testInput("title")
	input.Priority = "urgent"
	_, err = svc.CreateTask(ctx, 1, input)
	require.ErrorIs(t, err, ErrValidation)
}

func TestListTasks_FilterValidation(t *testing.T) {
	svc := NewTaskService(newMemoryTaskRepo())

	_, err := svc.ListTasks(context.Background(), 1, repository.TaskFilter{Status: "bogus"}, repository.TaskSort{})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.ListTasks(context.Background(), 1, repository.TaskFilter{Priority: "bogus"}, repository.TaskSort{})
	require.ErrorIs(t, err, ErrValidation)
}

func TestTaskLifecycle(t *testing.T) {
	svc := NewTaskService(newMemoryTaskRepo())
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, 1, testInput("groceries"))
	require.NoError(t, err)

	got, err := svc.GetTask(ctx, 1, created.ID)
	require.NoError(t, err)
	require.Equal(t, "groceries", got.Title)

	// Another user cannot see it.
	_, err = svc.GetTask(ctx, 2, created.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	input := testInput("groceries")
	input.Status = domain.TaskStatusCompleted
	updated, err := svc.UpdateTask(ctx, 1, created.ID, input)
	require.NoError(t, err)
	require.Equal(t, domain.TaskStatusCompleted, updated.Status)

	require.NoError(t, svc.DeleteTask(ctx, 1, created.ID))
	_, err = svc.GetTask(ctx, 1, created.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
}
