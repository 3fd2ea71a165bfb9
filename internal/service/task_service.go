package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tasktracker/internal/access"
	"tasktracker/internal/domain"
	"tasktracker/internal/repository"
)

// TaskPage is one page of a task listing.
type TaskPage struct {
	Page  int
	Limit int
	Tasks []domain.Task
}

// TaskService runs access-checked task operations against the repository.
type TaskService interface {
	CreateTask(ctx context.Context, id domain.Identity, in access.NewTask) (*domain.Task, error)
	ListTasks(ctx context.Context, id domain.Identity, params access.ListParams) (*TaskPage, error)
	UpdateTask(ctx context.Context, id domain.Identity, taskID string, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTask(ctx context.Context, id domain.Identity, taskID string) (*domain.Task, error)
}

type TaskConfig struct {
	Policy access.Policy
	Logger *logrus.Logger
	// Now must return strictly increasing values; see MonotonicClock.
	Now func() time.Time
}

type taskService struct {
	tasks  repository.TaskRepository
	policy access.Policy
	now    func() time.Time
	log    *logrus.Entry
}

func NewTaskService(tasks repository.TaskRepository, cfg TaskConfig) TaskService {
	if cfg.Policy.DefaultLimit == 0 || cfg.Policy.MaxLimit == 0 {
		cfg.Policy = access.NewPolicy(cfg.Policy.DefaultLimit, cfg.Policy.MaxLimit)
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Now == nil {
		cfg.Now = NewMonotonicClock().Now
	}
	return &taskService{
		tasks:  tasks,
		policy: cfg.Policy,
		now:    cfg.Now,
		log:    cfg.Logger.WithField("component", "tasks"),
	}
}

func (s *taskService) CreateTask(ctx context.Context, id domain.Identity, in access.NewTask) (*domain.Task, error) {
	task, err := access.ScopeCreate(id, in)
	if err != nil {
		return nil, err
	}
	task.ID = uuid.NewString()
	task.CreatedAt = s.now()

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"task_id": task.ID, "user_id": id.ID}).Debug("task created")
	return task, nil
}

func (s *taskService) ListTasks(ctx context.Context, id domain.Identity, params access.ListParams) (*TaskPage, error) {
	q, err := s.policy.ScopeList(id, params)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return &TaskPage{Page: q.Page, Limit: q.Limit, Tasks: tasks}, nil
}

func (s *taskService) UpdateTask(ctx context.Context, id domain.Identity, taskID string, patch domain.TaskPatch) (*domain.Task, error) {
	scope, patch, err := access.ScopeUpdate(id, taskID, patch)
	if err != nil {
		return nil, err
	}
	task, err := s.tasks.Update(ctx, scope, patch)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"task_id": task.ID, "user_id": id.ID}).Debug("task updated")
	return task, nil
}

func (s *taskService) DeleteTask(ctx context.Context, id domain.Identity, taskID string) (*domain.Task, error) {
	scope, err := access.ScopeDelete(id, taskID)
	if err != nil {
		return nil, err
	}
	task, err := s.tasks.Delete(ctx, scope)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"task_id": task.ID, "user_id": id.ID}).Debug("task deleted")
	return task, nil
}
