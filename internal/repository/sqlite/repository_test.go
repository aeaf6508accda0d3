package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"taskmind/internal/domain"
	"taskmind/internal/repository"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func initRepos(t *testing.T, db *sql.DB) (repository.UserRepository, repository.TaskRepository) {
	t.Helper()
	ctx := context.Background()
	users := NewUserRepository(db)
	tasks := NewTaskRepository(db)
	require.NoError(t, users.Init(ctx))
	require.NoError(t, tasks.Init(ctx))
	return users, tasks
}

func TestUserRepository_EmailCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	users, _ := initRepos(t, openTestDB(t))

	_, err := users.Create(ctx, &domain.User{
		Name:         "Ann",
		Email:        "ann@x.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)

	_, err = users.Create(ctx, &domain.User{
		Name:         "Ann Again",
		Email:        "ANN@X.COM",
		PasswordHash: "hash",
	})
	require.ErrorIs(t, err, repository.ErrDuplicate)

	found, err := users.FindByEmail(ctx, "Ann@X.Com")
	require.NoError(t, err)
	require.Equal(t, "Ann", found.Name)
}

func TestUserRepository_FindByEmail_Missing(t *testing.T) {
	users, _ := initRepos(t, openTestDB(t))

	_, err := users.FindByEmail(context.Background(), "nobody@x.com")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_PartialUpdate(t *testing.T) {
	ctx := context.Background()
	users, _ := initRepos(t, openTestDB(t))

	id, err := users.Create(ctx, &domain.User{Name: "Ann", Email: "ann@x.com", PasswordHash: "h1"})
	require.NoError(t, err)

	name := "Annie"
	updated, err := users.UpdateByID(ctx, id, repository.UserUpdate{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Annie", updated.Name)
	require.Equal(t, "ann@x.com", updated.Email)
	require.Equal(t, "h1", updated.PasswordHash)

	hash := "h2"
	updated, err = users.UpdateByID(ctx, id, repository.UserUpdate{PasswordHash: &hash})
	require.NoError(t, err)
	require.Equal(t, "Annie", updated.Name)
	require.Equal(t, "h2", updated.PasswordHash)
}

func createTask(t *testing.T, tasks repository.TaskRepository, userID int64, title string, status domain.TaskStatus, priority domain.TaskPriority) int64 {
	t.Helper()
	id, err := tasks.Create(context.Background(), &domain.Task{
		UserID:   userID,
		Title:    title,
		Content:  "content",
		Status:   status,
		Priority: priority,
		DueDate:  time.Now().UTC().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	return id
}

func TestTaskRepository_OwnerScoping(t *testing.T) {
	ctx := context.Background()
	users, tasks := initRepos(t, openTestDB(t))

	ann, err := users.Create(ctx, &domain.User{Name: "Ann", Email: "ann@x.com", PasswordHash: "h"})
	require.NoError(t, err)
	bob, err := users.Create(ctx, &domain.User{Name: "Bob", Email: "bob@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	id := createTask(t, tasks, ann, "groceries", domain.TaskStatusPending, domain.TaskPriorityMedium)

	_, err = tasks.Get(ctx, bob, id)
	require.ErrorIs(t, err, repository.ErrNotFound)

	err = tasks.Delete(ctx, bob, id)
	require.ErrorIs(t, err, repository.ErrNotFound)

	got, err := tasks.Get(ctx, ann, id)
	require.NoError(t, err)
	require.Equal(t, "groceries", got.Title)

	require.NoError(t, tasks.Delete(ctx, ann, id))
	_, err = tasks.Get(ctx, ann, id)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTaskRepository_ListFilterAndSort(t *testing.T) {
	ctx := context.Background()
	users, tasks := initRepos(t, openTestDB(t))

	ann, err := users.Create(ctx, &domain.User{Name: "Ann", Email: "ann@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	createTask(t, tasks, ann, "b task", domain.TaskStatusPending, domain.TaskPriorityHigh)
	createTask(t, tasks, ann, "a task", domain.TaskStatusCompleted, domain.TaskPriorityLow)
	createTask(t, tasks, ann, "c task", domain.TaskStatusPending, domain.TaskPriorityLow)

	pending, err := tasks.List(ctx, ann, repository.TaskFilter{Status: domain.TaskStatusPending}, repository.TaskSort{})
	require.NoError(t, err)
	require.Len(t, pending, 2)
	for _, task := range pending {
		require.Equal(t, domain.TaskStatusPending, task.Status)
	}

	low, err := tasks.List(ctx, ann, repository.TaskFilter{Priority: domain.TaskPriorityLow}, repository.TaskSort{})
	require.NoError(t, err)
	require.Len(t, low, 2)

	byTitle, err := tasks.List(ctx, ann, repository.TaskFilter{}, repository.TaskSort{SortBy: "title", Ascending: true})
	require.NoError(t, err)
	require.Len(t, byTitle, 3)
	require.Equal(t, "a task", byTitle[0].Title)
	require.Equal(t, "c task", byTitle[2].Title)

	// Unknown sort column falls back to newest first.
	fallback, err := tasks.List(ctx, ann, repository.TaskFilter{}, repository.TaskSort{SortBy: "evil; DROP TABLE tasks"})
	require.NoError(t, err)
	require.Len(t, fallback, 3)
	require.Equal(t, "c task", fallback[0].Title)
}
