package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BuzzLyutic/task-board-api/internal/model"
	"github.com/BuzzLyutic/task-board-api/pkg/apperror"
)

func TestAuthorize(t *testing.T) {
	creator := model.User{ID: 1, Username: "alice"}
	assignee := model.User{ID: 2, Username: "bob"}
	stranger := model.User{ID: 3, Username: "eve"}

	assigneeID := assignee.ID
	assigned := model.Task{ID: 10, CreatedByID: creator.ID, AssignedToID: &assigneeID}
	unassigned := model.Task{ID: 11, CreatedByID: creator.ID}

	tests := []struct {
		name    string
		user    model.User
		task    model.Task
		op      Operation
		allowed bool
	}{
		{"creator can read", creator, assigned, OpRead, true},
		{"creator can update", creator, assigned, OpUpdate, true},
		{"creator can delete", creator, assigned, OpDelete, true},
		{"assignee can read", assignee, assigned, OpRead, true},
		{"assignee can update", assignee, assigned, OpUpdate, true},
		{"assignee cannot delete", assignee, assigned, OpDelete, false},
		{"stranger cannot read", stranger, assigned, OpRead, false},
		{"stranger cannot update", stranger, assigned, OpUpdate, false},
		{"stranger cannot delete", stranger, assigned, OpDelete, false},
		{"no assignee - only creator reads", assignee, unassigned, OpRead, false},
		{"no assignee - creator still reads", creator, unassigned, OpRead, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.user, tt.task, tt.op)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				// Отказ — именно Authorization, не NotFound
				assert.True(t, apperror.IsAuthorization(err))
				assert.False(t, apperror.IsNotFound(err))
			}
		})
	}
}

func TestOperation_String(t *testing.T) {
	assert.Equal(t, "read", OpRead.String())
	assert.Equal(t, "update", OpUpdate.String())
	assert.Equal(t, "delete", OpDelete.String())
}
