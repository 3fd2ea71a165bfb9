// Package access decides which task rows an identity may read or change.
//
// Every function here is pure: it validates input and produces a storage
// descriptor (domain.TaskQuery, domain.TaskScope or a new domain.Task) that
// the repositories execute as a single statement. Listing is role aware,
// mutations are always scoped to the caller's own rows.
package access

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"tasktracker/internal/domain"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Policy holds the pagination limits applied to list requests.
type Policy struct {
	DefaultLimit int
	MaxLimit     int
}

func NewPolicy(defaultLimit, maxLimit int) Policy {
	if defaultLimit <= 0 {
		defaultLimit = DefaultPageLimit
	}
	if maxLimit <= 0 {
		maxLimit = MaxPageLimit
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return Policy{DefaultLimit: defaultLimit, MaxLimit: maxLimit}
}

// ListParams are the raw query parameters of a list request.
type ListParams struct {
	Status string
	Page   string
	Limit  string
}

// NewTask is the client input for task creation.
type NewTask struct {
	Title       string
	Description *string
}

// ScopeList builds the listing query for id. Admins see every owner's tasks.
func (p Policy) ScopeList(id domain.Identity, params ListParams) (domain.TaskQuery, error) {
	page, err := positiveInt("page", params.Page, 1)
	if err != nil {
		return domain.TaskQuery{}, err
	}
	limit, err := positiveInt("limit", params.Limit, p.DefaultLimit)
	if err != nil {
		return domain.TaskQuery{}, err
	}
	if limit > p.MaxLimit {
		limit = p.MaxLimit
	}

	q := domain.TaskQuery{
		Page:   page,
		Limit:  limit,
		Offset: offsetFor(page, limit),
	}
	if !id.IsAdmin() {
		q.OwnerID = id.ID
	}
	if strings.TrimSpace(params.Status) != "" {
		status, ok := domain.ParseTaskStatus(params.Status)
		if !ok {
			return domain.TaskQuery{}, invalidStatus()
		}
		q.Status = &status
	}
	return q, nil
}

// ScopeCreate returns the task to insert for id. ID and CreatedAt are left to the store.
func ScopeCreate(id domain.Identity, in NewTask) (*domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.NewValidationError("title", "task title is required")
	}
	return &domain.Task{
		Title:       title,
		Description: normalizeDescription(in.Description),
		Status:      domain.TaskStatusPending,
		OwnerID:     id.ID,
	}, nil
}

// ScopeUpdate validates patch and pins it to the caller's own task, whatever the role.
func ScopeUpdate(id domain.Identity, taskID string, patch domain.TaskPatch) (domain.TaskScope, domain.TaskPatch, error) {
	if patch.IsEmpty() {
		return domain.TaskScope{}, patch, domain.NewValidationError("", "no fields provided to update")
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return domain.TaskScope{}, patch, domain.NewValidationError("title", "task title cannot be empty")
		}
		patch.Title = &title
	}
	if patch.Status != nil {
		status, ok := domain.ParseTaskStatus(string(*patch.Status))
		if !ok {
			return domain.TaskScope{}, patch, invalidStatus()
		}
		patch.Status = &status
	}
	if patch.DescriptionSet {
		patch.Description = normalizeDescription(patch.Description)
	}

	scope, err := ScopeDelete(id, taskID)
	if err != nil {
		return domain.TaskScope{}, patch, err
	}
	return scope, patch, nil
}

// ScopeDelete pins a delete to the caller's own task, whatever the role.
// A malformed id is reported like a missing one.
func ScopeDelete(id domain.Identity, taskID string) (domain.TaskScope, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(taskID))
	if err != nil {
		return domain.TaskScope{}, domain.ErrTaskNotFound
	}
	return domain.TaskScope{TaskID: parsed.String(), OwnerID: id.ID}, nil
}

// offsetFor saturates instead of overflowing so a huge page still lands past the last row.
func offsetFor(page, limit int) int {
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

func positiveInt(field, raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, domain.NewValidationError(field, "must be a positive integer")
	}
	return n, nil
}

func normalizeDescription(d *string) *string {
	if d == nil || *d == "" {
		return nil
	}
	v := *d
	return &v
}

func invalidStatus() error {
	return domain.NewValidationError("status", "must be PENDING or COMPLETED")
}
