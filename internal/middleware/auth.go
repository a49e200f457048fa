package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"crimewatch/internal/domain"
	"crimewatch/internal/service"
)

type ctxKey string

const userKey ctxKey = "user"

// Identity resolves the caller from the X-User-ID header against the user
// repository and stores the user in the request context. Session mechanics
// live outside this service; this is the seam they plug into.
func Identity(users service.UserRepository, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("X-User-ID")
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			user, err := users.GetByID(r.Context(), id)
			if err != nil {
				logger.Warn("identity lookup failed", slog.String("user_id", raw), slog.Any("error", err))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
		})
	}
}

// RequirePolice guards police-only routes. Must run after Identity.
func RequirePolice(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFrom(r.Context())
		if user == nil || user.Role != domain.RolePolice {
			http.Error(w, "Forbidden: Police access only", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func UserFrom(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userKey).(*domain.User)
	return user
}

// WithUser is used by handler tests to seed the context.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}
