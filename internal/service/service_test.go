package service

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"tasktracker/internal/repository/sqlite"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fixture struct {
	users UserService
	tasks TaskService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	userRepo := sqlite.NewUserRepository(db)
	taskRepo := sqlite.NewTaskRepository(db)
	ctx := context.Background()
	require.NoError(t, userRepo.Init(ctx))
	require.NoError(t, taskRepo.Init(ctx))

	return fixture{
		users: NewUserService(userRepo, UserConfig{
			BcryptCost:       bcrypt.MinCost,
			AllowAdminSignup: true,
			Logger:           quietLogger(),
		}),
		tasks: NewTaskService(taskRepo, TaskConfig{Logger: quietLogger()}),
	}
}
