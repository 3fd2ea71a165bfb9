package repository

import (
	"context"

	"tasktracker/internal/domain"
)

// TaskRepository exposes persistence operations for tasks. Every method runs
// exactly one statement; Update and Delete return domain.ErrTaskNotFound when
// the scope matches no row.
type TaskRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, task *domain.Task) error
	List(ctx context.Context, query domain.TaskQuery) ([]domain.Task, error)
	Update(ctx context.Context, scope domain.TaskScope, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, scope domain.TaskScope) (*domain.Task, error)
}
