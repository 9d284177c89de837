package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/BuzzLyutic/task-board-api/internal/authz"
	"github.com/BuzzLyutic/task-board-api/internal/model"
	"github.com/BuzzLyutic/task-board-api/internal/repo"
	"github.com/BuzzLyutic/task-board-api/pkg/apperror"
)

// TaskService — оркестрация жизненного цикла задач.
// Текущий пользователь всегда приходит явным параметром, не из глобального состояния.
type TaskService struct {
	tasks repo.TaskRepository
	users repo.UserRepository
}

func NewTaskService(tasks repo.TaskRepository, users repo.UserRepository) *TaskService {
	return &TaskService{tasks: tasks, users: users}
}

func (s *TaskService) Create(ctx context.Context, currentUser model.User, req model.TaskRequest, idempKey string) (model.TaskResponse, error) {
	if err := s.validate(req); err != nil {
		return model.TaskResponse{}, err
	}

	if idempKey != "" { // Идемпотентность: повтор с тем же ключом возвращает уже созданную задачу
		if existingID, err := s.tasks.GetIdempotencyKey(ctx, idempKey); err == nil {
			existing, err := s.tasks.Get(ctx, existingID)
			if err != nil {
				return model.TaskResponse{}, s.mapTaskErr(err)
			}
			return s.toResponse(ctx, existing)
		}
	}

	task := model.Task{
		Title:       strings.TrimSpace(req.Title),
		Status:      model.StatusNew,      // значения по умолчанию, если не заданы
		Priority:    model.PriorityMedium,
		DueDate:     req.DueDate,
		CreatedByID: currentUser.ID,
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.AssignedToID != nil {
		assignee, err := s.users.GetByID(ctx, *req.AssignedToID)
		if err != nil {
			return model.TaskResponse{}, s.mapAssigneeErr(err)
		}
		task.AssignedToID = &assignee.ID
	}

	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	created, err := s.tasks.Create(ctx, task)
	if err != nil {
		return model.TaskResponse{}, apperror.NewDatabase("failed to create task", err)
	}

	if idempKey != "" {
		s.tasks.SaveIdempotencyKey(ctx, idempKey, created.ID)
	}

	return s.toResponse(ctx, created)
}

// List возвращает задачи, где текущий пользователь создатель или исполнитель.
func (s *TaskService) List(ctx context.Context, currentUser model.User, filter model.TaskFilter) ([]model.TaskResponse, error) {
	tasks, err := s.tasks.ListForUser(ctx, currentUser.ID, filter)
	if err != nil {
		return nil, apperror.NewDatabase("failed to list tasks", err)
	}

	// Один проход по справочнику на каждый уникальный id
	names := map[int64]string{currentUser.ID: currentUser.Username}
	responses := make([]model.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp, err := s.toResponseCached(ctx, t, names)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *TaskService) Get(ctx context.Context, currentUser model.User, id int64) (model.TaskResponse, error) {
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return model.TaskResponse{}, s.mapTaskErr(err)
	}

	if err := authz.Authorize(currentUser, task, authz.OpRead); err != nil {
		return model.TaskResponse{}, err
	}
	return s.toResponse(ctx, task)
}

// Update: title, description и due_date перезаписываются всегда (nil очищает
// description и due_date), status и priority — только если переданы,
// исполнитель заменяется только если передан. Это сознательная асимметрия
// с Create, где nil означает значение по умолчанию.
func (s *TaskService) Update(ctx context.Context, currentUser model.User, id int64, req model.TaskRequest) (model.TaskResponse, error) {
	if err := s.validate(req); err != nil {
		return model.TaskResponse{}, err
	}

	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return model.TaskResponse{}, s.mapTaskErr(err)
	}

	if err := authz.Authorize(currentUser, task, authz.OpUpdate); err != nil {
		return model.TaskResponse{}, err
	}

	task.Title = strings.TrimSpace(req.Title)
	task.Description = ""
	if req.Description != nil {
		task.Description = *req.Description
	}
	task.DueDate = req.DueDate
	if req.Status != nil {
		task.Status = *req.Status // порядок переходов не ограничен
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.AssignedToID != nil {
		assignee, err := s.users.GetByID(ctx, *req.AssignedToID)
		if err != nil {
			return model.TaskResponse{}, s.mapAssigneeErr(err)
		}
		task.AssignedToID = &assignee.ID
	}

	task.UpdatedAt = nextTimestamp(task.UpdatedAt)

	updated, err := s.tasks.Update(ctx, task)
	if err != nil {
		return model.TaskResponse{}, s.mapTaskErr(err)
	}
	return s.toResponse(ctx, updated)
}

func (s *TaskService) Delete(ctx context.Context, currentUser model.User, id int64) error {
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return s.mapTaskErr(err)
	}

	if err := authz.Authorize(currentUser, task, authz.OpDelete); err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		return s.mapTaskErr(err)
	}
	return nil
}

func (s *TaskService) GetStats(ctx context.Context) (repo.Stats, error) {
	return s.tasks.GetStats(ctx)
}

func (s *TaskService) validate(req model.TaskRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return apperror.NewValidation("title is required", nil)
	}
	if req.Status != nil && !req.Status.Valid() {
		return apperror.NewValidation("invalid status", nil)
	}
	if req.Priority != nil && !req.Priority.Valid() {
		return apperror.NewValidation("invalid priority", nil)
	}
	return nil
}

// nextTimestamp гарантирует строгий рост updated_at даже при грубых часах.
func nextTimestamp(prev time.Time) time.Time {
	now := time.Now().UTC()
	if !now.After(prev) {
		return prev.Add(time.Microsecond)
	}
	return now
}

func (s *TaskService) toResponse(ctx context.Context, t model.Task) (model.TaskResponse, error) {
	return s.toResponseCached(ctx, t, make(map[int64]string))
}

func (s *TaskService) toResponseCached(ctx context.Context, t model.Task, names map[int64]string) (model.TaskResponse, error) {
	resp := model.TaskResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       t.Status,
		Priority:     t.Priority,
		AssignedToID: t.AssignedToID,
		CreatedByID:  t.CreatedByID,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		DueDate:      t.DueDate,
	}

	name, err := s.username(ctx, t.CreatedByID, names)
	if err != nil {
		return resp, err
	}
	resp.CreatedByName = name

	if t.AssignedToID != nil {
		name, err := s.username(ctx, *t.AssignedToID, names)
		if err != nil {
			return resp, err
		}
		resp.AssignedToName = name
	}
	return resp, nil
}

func (s *TaskService) username(ctx context.Context, id int64, names map[int64]string) (string, error) {
	if name, ok := names[id]; ok {
		return name, nil
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return "", apperror.NewDatabase("failed to resolve user", err)
	}
	names[id] = user.Username
	return user.Username, nil
}

func (s *TaskService) mapTaskErr(err error) error {
	if errors.Is(err, repo.ErrorNotFound) {
		return apperror.NewNotFound("task not found", err)
	}
	return apperror.NewDatabase("task store error", err)
}

func (s *TaskService) mapAssigneeErr(err error) error {
	if errors.Is(err, repo.ErrorNotFound) {
		return apperror.NewNotFound("assignee not found", err)
	}
	return apperror.NewDatabase("failed to resolve assignee", err)
}
