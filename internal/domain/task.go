package domain

import (
	"strings"
	"time"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "PENDING"
	TaskStatusCompleted TaskStatus = "COMPLETED"
)

// ParseTaskStatus accepts a status name in any letter case.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	switch st := TaskStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case TaskStatusPending, TaskStatusCompleted:
		return st, true
	}
	return "", false
}

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          string
	Title       string
	Description *string
	Status      TaskStatus
	OwnerID     string
	CreatedAt   time.Time
}

// TaskPatch carries the fields of a partial update. Nil pointers are left
// untouched; DescriptionSet with a nil Description clears the column.
type TaskPatch struct {
	Title          *string
	Description    *string
	DescriptionSet bool
	Status         *TaskStatus
}

func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && !p.DescriptionSet && p.Status == nil
}

// TaskQuery describes an authorized, paginated task listing.
// An empty OwnerID means no owner filter.
type TaskQuery struct {
	OwnerID string
	Status  *TaskStatus
	Page    int
	Limit   int
	Offset  int
}

// TaskScope pins a mutation to one task of one owner.
type TaskScope struct {
	TaskID  string
	OwnerID string
}
