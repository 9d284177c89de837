package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-board-api/internal/service"
	"github.com/BuzzLyutic/task-board-api/pkg/apperror"
	"github.com/BuzzLyutic/task-board-api/pkg/respond"
)

type AuthHandler struct {
	service *service.AuthService
	logger  *zap.Logger
}

func NewAuthHandler(srv *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusCreated, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, resp)
}

func (h *AuthHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
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
