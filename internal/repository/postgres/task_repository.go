package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tasktracker/internal/domain"
	"tasktracker/internal/repository"
)

const taskColumns = `id, title, description, status, user_id, created_at`

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) repository.TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Init(ctx context.Context) error {
	if _, err := MigrateUp(ctx, r.db); err != nil {
		return fmt.Errorf("init tasks schema: %w", err)
	}
	return nil
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO tasks (id, title, description, status, user_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID,
		t.Title,
		t.Description,
		string(t.Status),
		t.OwnerID,
		t.CreatedAt.UTC(),
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
		args = append(args, q.OwnerID)
		where = append(where, "user_id = $"+strconv.Itoa(len(args)))
	}
	if q.Status != nil {
		args = append(args, string(*q.Status))
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, q.Limit, q.Offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) Update(ctx context.Context, scope domain.TaskScope, patch domain.TaskPatch) (*domain.Task, error) {
	var (
		sets []string
		args []any
	)
	if patch.Title != nil {
		args = append(args, *patch.Title)
		sets = append(sets, "title = $"+strconv.Itoa(len(args)))
	}
	if patch.DescriptionSet {
		args = append(args, patch.Description)
		sets = append(sets, "description = $"+strconv.Itoa(len(args)))
	}
	if patch.Status != nil {
		args = append(args, string(*patch.Status))
		sets = append(sets, "status = $"+strconv.Itoa(len(args)))
	}
	if len(sets) == 0 {
		return nil, domain.NewValidationError("", "no fields provided to update")
	}
	args = append(args, scope.TaskID, scope.OwnerID)

	row := r.db.QueryRow(ctx, fmt.Sprintf(
		`UPDATE tasks SET %s WHERE id = $%d AND user_id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args)-1, len(args), taskColumns,
	), args...)
	return scanTask(row)
}

func (r *TaskRepository) Delete(ctx context.Context, scope domain.TaskScope) (*domain.Task, error) {
	row := r.db.QueryRow(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2 RETURNING `+taskColumns,
		scope.TaskID,
		scope.OwnerID,
	)
	return scanTask(row)
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t      domain.Task
		status string
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &t.OwnerID, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	t.Status = domain.TaskStatus(status)
	return &t, nil
}
