// Package authz — чистая логика прав доступа к задачам.
// Никакого I/O: решение принимается только по паре (пользователь, задача).
package authz

import (
	"github.com/BuzzLyutic/task-board-api/internal/model"
	"github.com/BuzzLyutic/task-board-api/pkg/apperror"
)

type Operation int

const (
	OpRead Operation = iota
	OpUpdate
	OpDelete
)

func (op Operation) String() string {
	switch op {
	case OpRead:
		return "read"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	}
	return "unknown"
}

// Authorize проверяет право пользователя на операцию над задачей.
// Read/Update разрешены создателю и исполнителю, Delete — только создателю.
// Отказ — всегда Authorization, не NotFound: существование задачи уже подтверждено
// загрузкой, скрываем только содержимое.
func Authorize(user model.User, task model.Task, op Operation) error {
	switch op {
	case OpRead, OpUpdate:
		if isCreator(user, task) || isAssignee(user, task) {
			return nil
		}
		return apperror.NewAuthorization("access denied", nil)
	case OpDelete:
		if isCreator(user, task) {
			return nil
		}
		return apperror.NewAuthorization("only the creator can delete this task", nil)
	}
	return apperror.NewAuthorization("unknown operation", nil)
}

func isCreator(user model.User, task model.Task) bool {
	return task.CreatedByID == user.ID
}

func isAssignee(user model.User, task model.Task) bool {
	return task.AssignedToID != nil && *task.AssignedToID == user.ID
}
