package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-board-api/internal/auth"
	"github.com/BuzzLyutic/task-board-api/internal/handler"
	"github.com/BuzzLyutic/task-board-api/internal/model"
	"github.com/BuzzLyutic/task-board-api/internal/repo"
	"github.com/BuzzLyutic/task-board-api/internal/service"
)

func setupE2EServer(t *testing.T) (*httptest.Server, func()) {
	pool, cleanup := SetupTestDB(t)
	TruncateTables(t, pool)

	userRepo := repo.NewUserRepo(pool)
	taskRepo := repo.NewTaskRepo(pool)
	tokens := auth.NewTokenManager("e2e-secret", time.Hour)

	authService := service.NewAuthService(userRepo, tokens)
	taskService := service.NewTaskService(taskRepo, userRepo)
	logger := zap.NewNop()
	authHandler := handler.NewAuthHandler(authService, logger)
	taskHandler := handler.NewTaskHandler(taskService, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	r.Route("/api/tasks", func(r chi.Router) {
		r.Use(auth.Middleware(tokens, userRepo))
		r.Post("/", taskHandler.Create)
		r.Get("/", taskHandler.List)
		r.Get("/{id}", taskHandler.Get)
		r.Put("/{id}", taskHandler.Update)
		r.Delete("/{id}", taskHandler.Delete)
	})

	r.With(auth.Middleware(tokens, userRepo)).Get("/api/stats", taskHandler.Stats)

	server := httptest.NewServer(r)

	cleanupFunc := func() {
		server.Close()
		cleanup()
	}

	return server, cleanupFunc
}

func registerUser(t *testing.T, serverURL, username string) (string, model.User) {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	resp, err := http.Post(serverURL+"/api/auth/register", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var authResp service.AuthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&authResp))
	require.NotEmpty(t, authResp.AccessToken)
	return authResp.AccessToken, authResp.User
}

func doRequest(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeTask(t *testing.T, resp *http.Response) model.TaskResponse {
	t.Helper()
	defer resp.Body.Close()

	var task model.TaskResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&task))
	return task
}

func TestE2E_OwnershipLifecycle(t *testing.T) {
	server, cleanup := setupE2EServer(t)
	defer cleanup()

	aliceToken, _ := registerUser(t, server.URL, "alice")
	bobToken, bob := registerUser(t, server.URL, "bob")

	// 1. alice создает задачу — дефолты NEW/MEDIUM
	resp := doRequest(t, http.MethodPost, server.URL+"/api/tasks", aliceToken, map[string]string{
		"title": "Write spec",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	task := decodeTask(t, resp)
	assert.Equal(t, model.StatusNew, task.Status)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.Equal(t, "alice", task.CreatedByName)

	taskURL := fmt.Sprintf("%s/api/tasks/%d", server.URL, task.ID)

	// 2. bob не создатель и не исполнитель — 403
	resp = doRequest(t, http.MethodGet, taskURL, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// 3. alice назначает bob исполнителем
	resp = doRequest(t, http.MethodPut, taskURL, aliceToken, map[string]interface{}{
		"title":          "Write spec",
		"assigned_to_id": bob.ID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeTask(t, resp)
	require.NotNil(t, updated.AssignedToID)
	assert.Equal(t, bob.ID, *updated.AssignedToID)
	assert.True(t, updated.UpdatedAt.After(task.UpdatedAt))

	// 4. теперь bob видит задачу
	resp = doRequest(t, http.MethodGet, taskURL, bobToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	seen := decodeTask(t, resp)
	assert.Equal(t, "Write spec", seen.Title)

	// 5. bob не может удалить — только создатель
	resp = doRequest(t, http.MethodDelete, taskURL, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// 6. alice удаляет
	resp = doRequest(t, http.MethodDelete, taskURL, aliceToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// 7. задача пропала
	resp = doRequest(t, http.MethodGet, taskURL, aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestE2E_ListScoping(t *testing.T) {
	server, cleanup := setupE2EServer(t)
	defer cleanup()

	aliceToken, alice := registerUser(t, server.URL, "alice")
	bobToken, bob := registerUser(t, server.URL, "bob")

	// Задача alice без исполнителя
	resp := doRequest(t, http.MethodPost, server.URL+"/api/tasks", aliceToken, map[string]string{
		"title": "Private",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Задача alice с исполнителем bob
	resp = doRequest(t, http.MethodPost, server.URL+"/api/tasks", aliceToken, map[string]interface{}{
		"title":          "Shared",
		"assigned_to_id": bob.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// bob видит только Shared
	resp = doRequest(t, http.MethodGet, server.URL+"/api/tasks", bobToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bobTasks []model.TaskResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&bobTasks))
	resp.Body.Close()
	require.Len(t, bobTasks, 1)
	assert.Equal(t, "Shared", bobTasks[0].Title)
	assert.Equal(t, alice.ID, bobTasks[0].CreatedByID)

	// alice видит обе
	resp = doRequest(t, http.MethodGet, server.URL+"/api/tasks", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var aliceTasks []model.TaskResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&aliceTasks))
	resp.Body.Close()
	assert.Len(t, aliceTasks, 2)
}

func TestE2E_AuthFlow(t *testing.T) {
	server, cleanup := setupE2EServer(t)
	defer cleanup()

	registerUser(t, server.URL, "alice")

	t.Run("unauthenticated request - 401", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, server.URL+"/api/tasks", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("duplicate registration - 409", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{
			"username": "alice",
			"email":    "alice@example.com",
			"password": "password123",
		})
		resp, err := http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("login and use token", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"username": "alice", "password": "password123"})
		resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var authResp service.AuthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&authResp))

		listResp := doRequest(t, http.MethodGet, server.URL+"/api/tasks", authResp.AccessToken, nil)
		assert.Equal(t, http.StatusOK, listResp.StatusCode)
		listResp.Body.Close()
	})

	t.Run("wrong password - 401", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"username": "alice", "password": "wrong"})
		resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
