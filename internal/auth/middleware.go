package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/BuzzLyutic/task-board-api/internal/model"
	"github.com/BuzzLyutic/task-board-api/internal/repo"
	"github.com/BuzzLyutic/task-board-api/pkg/respond"
)

type contextKey string

const userContextKey contextKey = "current_user"

// Middleware проверяет Bearer-токен и кладет текущего пользователя в контекст.
// Невалидный токен или неизвестный subject — всегда 401.
func Middleware(tokens *TokenManager, users repo.UserRepository) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respond.Error(w, r, http.StatusUnauthorized, "authorization header is missing")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				respond.Error(w, r, http.StatusUnauthorized, "authorization header format must be Bearer {token}")
				return
			}

			subject, err := tokens.Parse(parts[1])
			if err != nil {
				respond.Error(w, r, http.StatusUnauthorized, "invalid token")
				return
			}

			// Resolve subject → User через справочник пользователей
			user, err := users.GetByUsername(r.Context(), subject)
			if err != nil {
				if errors.Is(err, repo.ErrorNotFound) {
					respond.Error(w, r, http.StatusUnauthorized, "unknown token subject")
					return
				}
				respond.Error(w, r, http.StatusInternalServerError, "internal error")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUser достает пользователя, положенного Middleware.
func CurrentUser(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(userContextKey).(model.User)
	return user, ok
}

// WithUser используется в тестах, чтобы собрать контекст без middleware.
func WithUser(ctx context.Context, user model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
