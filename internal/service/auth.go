package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/BuzzLyutic/task-board-api/internal/auth"
	"github.com/BuzzLyutic/task-board-api/internal/model"
	"github.com/BuzzLyutic/task-board-api/internal/repo"
	"github.com/BuzzLyutic/task-board-api/pkg/apperror"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresAt   time.Time  `json:"expires_at"`
	User        model.User `json:"user"`
}

// AuthService — регистрация и вход. Выпускает access-токены,
// по которым middleware находит пользователя.
type AuthService struct {
	users  repo.UserRepository
	tokens *auth.TokenManager
}

func NewAuthService(users repo.UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return AuthResponse{}, apperror.NewValidation("username, email and password are required", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, apperror.NewInternal("failed to hash password", err)
	}

	user, err := s.users.Create(ctx, model.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, repo.ErrorConflict) {
			return AuthResponse{}, apperror.NewConflict("username or email already exists", nil)
		}
		return AuthResponse{}, apperror.NewDatabase("failed to create user", err)
	}

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (AuthResponse, error) {
	user, err := s.lookupUser(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repo.ErrorNotFound) {
			// Не раскрываем, что именно не подошло — логин или пароль
			return AuthResponse{}, apperror.NewAuthentication("invalid credentials", nil)
		}
		return AuthResponse{}, apperror.NewDatabase("failed to get user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return AuthResponse{}, apperror.NewAuthentication("invalid credentials", nil)
	}

	return s.issue(user)
}

// lookupUser разрешает логин: по username, а если это похоже на email — по email
func (s *AuthService) lookupUser(ctx context.Context, login string) (model.User, error) {
	if strings.Contains(login, "@") {
		return s.users.GetByEmail(ctx, login)
	}
	return s.users.GetByUsername(ctx, login)
}

func (s *AuthService) issue(user model.User) (AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user.Username)
	if err != nil {
		return AuthResponse{}, apperror.NewInternal("failed to issue token", err)
	}
	return AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}
