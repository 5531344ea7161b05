package common

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"microblog/internal/dbmysql"
)

type contextKey string

const userContextKey contextKey = "current_user"

// UserResolver resolves the api-key header to a user row.
type UserResolver interface {
	ByAPIKey(ctx context.Context, apiKey string) (*dbmysql.User, error)
}

// AuthMiddleware enforces the api-key header on every request it wraps and
// injects the resolved user into the request context.
type AuthMiddleware struct {
	users  UserResolver
	logger *logrus.Logger
}

func NewAuthMiddleware(users UserResolver, logger *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{users: users, logger: logger}
}

func (m *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.Header.Get("api-key")
		if apiKey == "" {
			WriteError(w, m.logger, Unauthorizedf("api key required"))
			return
		}

		user, err := m.users.ByAPIKey(r.Context(), apiKey)
		if err != nil {
			WriteError(w, m.logger, err)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CurrentUser returns the authenticated user placed in the context by
// AuthMiddleware.
func CurrentUser(ctx context.Context) (*dbmysql.User, bool) {
	user, ok := ctx.Value(userContextKey).(*dbmysql.User)
	return user, ok
}

// WithUser is a test helper mirror of what AuthMiddleware injects.
func WithUser(ctx context.Context, user *dbmysql.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// CORSMiddleware adds permissive CORS headers for the SPA frontend.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, api-key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware logs each HTTP request with its duration.
func LoggingMiddleware(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start).String(),
			}).Info("request handled")
		})
	}
}
