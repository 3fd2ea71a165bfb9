package access

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/domain"
)

var (
	alice = domain.Identity{ID: "2f1c8d4e-0000-4000-8000-000000000001", Email: "alice@example.com", Role: domain.RoleUser}
	admin = domain.Identity{ID: "2f1c8d4e-0000-4000-8000-0000000000aa", Email: "root@example.com", Role: domain.RoleAdmin}
)

func TestScopeList_OwnerFilter(t *testing.T) {
	p := NewPolicy(0, 0)

	q, err := p.ScopeList(alice, ListParams{})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, q.OwnerID)
	assert.Nil(t, q.Status)

	q, err = p.ScopeList(admin, ListParams{Status: "completed"})
	require.NoError(t, err)
	assert.Empty(t, q.OwnerID, "admins are not owner filtered")
	require.NotNil(t, q.Status)
	assert.Equal(t, domain.TaskStatusCompleted, *q.Status)
}

func TestScopeList_Pagination(t *testing.T) {
	p := NewPolicy(10, 50)

	tests := []struct {
		name       string
		params     ListParams
		wantPage   int
		wantLimit  int
		wantOffset int
		wantErr    bool
	}{
		{name: "defaults", params: ListParams{}, wantPage: 1, wantLimit: 10, wantOffset: 0},
		{name: "second page of three", params: ListParams{Page: "2", Limit: "3"}, wantPage: 2, wantLimit: 3, wantOffset: 3},
		{name: "limit capped", params: ListParams{Page: "3", Limit: "5000"}, wantPage: 3, wantLimit: 50, wantOffset: 100},
		{name: "huge page saturates offset", params: ListParams{Page: "922337203685477582", Limit: "10"}, wantPage: 922337203685477582, wantLimit: 10, wantOffset: math.MaxInt},
		{name: "zero page", params: ListParams{Page: "0"}, wantErr: true},
		{name: "negative limit", params: ListParams{Limit: "-1"}, wantErr: true},
		{name: "garbage page", params: ListParams{Page: "two"}, wantErr: true},
		{name: "unknown status", params: ListParams{Status: "DONE"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := p.ScopeList(alice, tt.params)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, q.Page)
			assert.Equal(t, tt.wantLimit, q.Limit)
			assert.Equal(t, tt.wantOffset, q.Offset)
		})
	}
}

func TestNewPolicy_DefaultNeverExceedsMax(t *testing.T) {
	p := NewPolicy(200, 20)
	assert.Equal(t, 20, p.DefaultLimit)
	assert.Equal(t, 20, p.MaxLimit)
}

func TestScopeCreate(t *testing.T) {
	_, err := ScopeCreate(alice, NewTask{Title: ""})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = ScopeCreate(alice, NewTask{Title: "   "})
	require.ErrorIs(t, err, domain.ErrValidation)

	task, err := ScopeCreate(alice, NewTask{Title: "Buy milk"})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, domain.TaskStatusPending, task.Status)
	assert.Equal(t, alice.ID, task.OwnerID)
	assert.Nil(t, task.Description)

	empty := ""
	task, err = ScopeCreate(admin, NewTask{Title: "x", Description: &empty})
	require.NoError(t, err)
	assert.Nil(t, task.Description)
	assert.Equal(t, admin.ID, task.OwnerID)
}

func TestScopeUpdate(t *testing.T) {
	taskID := uuid.NewString()

	_, _, err := ScopeUpdate(alice, taskID, domain.TaskPatch{})
	require.ErrorIs(t, err, domain.ErrValidation)

	// an empty patch is rejected before the id is even looked at
	_, _, err = ScopeUpdate(alice, "not-a-uuid", domain.TaskPatch{})
	require.ErrorIs(t, err, domain.ErrValidation)

	blank := " "
	_, _, err = ScopeUpdate(alice, taskID, domain.TaskPatch{Title: &blank})
	require.ErrorIs(t, err, domain.ErrValidation)

	bogus := domain.TaskStatus("ARCHIVED")
	_, _, err = ScopeUpdate(alice, taskID, domain.TaskPatch{Status: &bogus})
	require.ErrorIs(t, err, domain.ErrValidation)

	lower := domain.TaskStatus("completed")
	scope, patch, err := ScopeUpdate(admin, taskID, domain.TaskPatch{Status: &lower})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskScope{TaskID: taskID, OwnerID: admin.ID}, scope, "admins are still owner scoped")
	assert.Equal(t, domain.TaskStatusCompleted, *patch.Status)

	_, _, err = ScopeUpdate(alice, "not-a-uuid", domain.TaskPatch{Status: &lower})
	require.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestScopeDelete(t *testing.T) {
	taskID := uuid.New()
	scope, err := ScopeDelete(alice, taskID.String())
	require.NoError(t, err)
	assert.Equal(t, alice.ID, scope.OwnerID)
	assert.Equal(t, taskID.String(), scope.TaskID)

	_, err = ScopeDelete(alice, "42")
	require.ErrorIs(t, err, domain.ErrTaskNotFound)
}
