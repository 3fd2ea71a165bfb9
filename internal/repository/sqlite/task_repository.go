package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tasktracker/internal/domain"
	"tasktracker/internal/repository"
)

const createTasksTable = `
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NULL,
	status TEXT NOT NULL DEFAULT 'PENDING',
	user_id TEXT NOT NULL,
	created_at TEXT NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_tasks_user_id_created_at ON tasks(user_id, created_at);
`

const taskColumns = `id, title, description, status, user_id, created_at`

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) repository.TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTasksTable); err != nil {
		return fmt.Errorf("create tasks table: %w", err)
	}
	return nil
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO tasks (id, title, description, status, user_id, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.Title,
		nullString(task.Description),
		string(task.Status),
		task.OwnerID,
		formatTime(task.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepository) List(ctx context.Context, q domain.TaskQuery) ([]domain.Task, error) {
	var (
		where []string
		args  []any
	)
	if q.OwnerID != "" {
		where = append(where, "user_id = ?")
		args = append(args, q.OwnerID)
	}
	if q.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*q.Status))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, q.Limit, q.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	return tasks, rows.Err()
}

func (r *TaskRepository) Update(ctx context.Context, scope domain.TaskScope, patch domain.TaskPatch) (*domain.Task, error) {
	var (
		sets []string
		args []any
	)
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.DescriptionSet {
		sets = append(sets, "description = ?")
		args = append(args, nullString(patch.Description))
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}
	if len(sets) == 0 {
		return nil, domain.NewValidationError("", "no fields provided to update")
	}
	args = append(args, scope.TaskID, scope.OwnerID)

	row := r.db.QueryRowContext(ctx, `
UPDATE tasks
SET `+strings.Join(sets, ", ")+`
WHERE id = ? AND user_id = ?
RETURNING `+taskColumns,
		args...,
	)
	return scanTask(row)
}

func (r *TaskRepository) Delete(ctx context.Context, scope domain.TaskScope) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `
DELETE FROM tasks
WHERE id = ? AND user_id = ?
RETURNING `+taskColumns,
		scope.TaskID,
		scope.OwnerID,
	)
	return scanTask(row)
}

func scanTask(scanner interface {
	Scan(dest ...any) error
}) (*domain.Task, error) {
	var (
		task        domain.Task
		description sql.NullString
		status      string
		createdAt   string
	)

	if err := scanner.Scan(
		&task.ID,
		&task.Title,
		&description,
		&status,
		&task.OwnerID,
		&createdAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	task.Status = domain.TaskStatus(status)
	task.CreatedAt = t
	if description.Valid {
		v := description.String
		task.Description = &v
	}

	return &task, nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
