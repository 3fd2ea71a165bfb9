package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/domain"
)

// Integration-style tests: run only when TASKTRACKER_TEST_DATABASE_URL points at a disposable database.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TASKTRACKER_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TASKTRACKER_TEST_DATABASE_URL not set; skipping integration test")
	}

	ctx := context.Background()
	pool, err := Connect(ctx, dsn, 4)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = MigrateDown(ctx, pool)
	require.NoError(t, err)
	applied, err := MigrateUp(ctx, pool)
	require.NoError(t, err)
	require.NotEmpty(t, applied)
	return pool
}

func createUser(t *testing.T, repo *UserRepository, email string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: "hash",
		Role:         domain.RoleUser,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestPostgresRepositories(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	users := &UserRepository{db: pool}
	tasks := &TaskRepository{db: pool}

	alice := createUser(t, users, "alice@example.com")
	bob := createUser(t, users, "bob@example.com")

	err := users.Create(ctx, &domain.User{ID: uuid.NewString(), Email: "alice@example.com", PasswordHash: "x", Role: domain.RoleUser, CreatedAt: time.Now()})
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)

	got, err := users.GetByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, got.ID)

	base := time.Now().UTC().Truncate(time.Microsecond)
	var ids []string
	for i := 0; i < 5; i++ {
		task := &domain.Task{
			ID: uuid.NewString(), Title: "task", Status: domain.TaskStatusPending,
			OwnerID: alice.ID, CreatedAt: base.Add(time.Duration(i) * time.Microsecond),
		}
		require.NoError(t, tasks.Create(ctx, task))
		ids = append(ids, task.ID)
	}

	page, err := tasks.List(ctx, domain.TaskQuery{OwnerID: alice.ID, Page: 2, Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[1], page[1].ID)

	done := domain.TaskStatusCompleted
	_, err = tasks.Update(ctx, domain.TaskScope{TaskID: ids[0], OwnerID: bob.ID}, domain.TaskPatch{Status: &done})
	require.ErrorIs(t, err, domain.ErrTaskNotFound)

	updated, err := tasks.Update(ctx, domain.TaskScope{TaskID: ids[0], OwnerID: alice.ID}, domain.TaskPatch{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, updated.Status)

	_, err = tasks.Delete(ctx, domain.TaskScope{TaskID: ids[0], OwnerID: alice.ID})
	require.NoError(t, err)
	_, err = tasks.Delete(ctx, domain.TaskScope{TaskID: ids[0], OwnerID: alice.ID})
	require.ErrorIs(t, err, domain.ErrTaskNotFound)
}
