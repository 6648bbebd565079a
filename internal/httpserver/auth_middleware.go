package httpserver

import (
	"context"
	"net/http"
	"strings"

	"studyroom/internal/domain"
	"studyroom/internal/security"
	"studyroom/internal/service"
)

type contextKey string

const actorContextKey contextKey = "actor"

// WithActor returns a new context carrying the acting user.
func WithActor(ctx context.Context, user domain.User) context.Context {
	return context.WithValue(ctx, actorContextKey, user)
}

// Actor extracts the acting user from the request context.
func Actor(r *http.Request) (domain.User, bool) {
	u, ok := r.Context().Value(actorContextKey).(domain.User)
	return u, ok
}

// AuthMiddleware validates the Bearer token and attaches the current actor
// to the context. The token subject must name the engine's canonical user.
func AuthMiddleware(tokens *security.TokenService, engine *service.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
				http.Error(w, "missing or invalid Authorization header", http.StatusUnauthorized)
				return
			}
			tokenStr := strings.TrimSpace(authHeader[len("Bearer "):])

			userID, err := tokens.ParseSubject(tokenStr)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			user := engine.CurrentUser()
			if user.ID != userID {
				http.Error(w, "unknown profile", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), user)))
		})
	}
}
