package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-board-api/internal/auth"
	"github.com/BuzzLyutic/task-board-api/internal/model"
	"github.com/BuzzLyutic/task-board-api/internal/service"
	"github.com/BuzzLyutic/task-board-api/pkg/apperror"
	"github.com/BuzzLyutic/task-board-api/pkg/respond"
)

type TaskHandler struct {
	service *service.TaskService
	logger  *zap.Logger
}

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	currentUser, ok := auth.CurrentUser(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req model.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}

	idempKey := r.Header.Get("Idempotency-Key")
	task, err := h.service.Create(r.Context(), currentUser, req, idempKey)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/tasks/%d", task.ID))
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	currentUser, ok := auth.CurrentUser(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	task, err := h.service.Get(r.Context(), currentUser, id)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	currentUser, ok := auth.CurrentUser(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var filter model.TaskFilter
	if status := model.Status(r.URL.Query().Get("status")); status != "" {
		if !status.Valid() {
			respond.Error(w, r, http.StatusBadRequest, "invalid status filter")
			return
		}
		filter.Status = &status
	}
	if priority := model.Priority(r.URL.Query().Get("priority")); priority != "" {
		if !priority.Valid() {
			respond.Error(w, r, http.StatusBadRequest, "invalid priority filter")
			return
		}
		filter.Priority = &priority
	}

	tasks, err := h.service.List(r.Context(), currentUser, filter)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	currentUser, ok := auth.CurrentUser(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	var req model.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	task, err := h.service.Update(r.Context(), currentUser, id, req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	currentUser, ok := auth.CurrentUser(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	if err := h.service.Delete(r.Context(), currentUser, id); err != nil {
		h.handleErrors(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, map[string]string{"message": "task deleted successfully"})
}

func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, stats)
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	if ae, ok := apperror.FromError(err); ok {
		code := ae.StatusCode()
		if code == http.StatusInternalServerError {
			h.logger.Error("internal error", zap.Error(err))
			respond.Error(w, r, code, "internal error")
			return
		}
		respond.Error(w, r, code, ae.Message)
		return
	}
	h.logger.Error("internal error", zap.Error(err))
	respond.Error(w, r, http.StatusInternalServerError, "internal error")
}
