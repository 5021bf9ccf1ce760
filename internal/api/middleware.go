package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/terra-clan/roadmap-engine/internal/storage"
)

// AuthMiddleware resolves session tokens to users.
// Supports "Bearer <token>" in the Authorization header and the
// X-Session-Token header.
type AuthMiddleware struct {
	repo storage.Repository
}

// NewAuthMiddleware creates new auth middleware
func NewAuthMiddleware(repo storage.Repository) *AuthMiddleware {
	return &AuthMiddleware{repo: repo}
}

// Attach resolves the session token, if any, and stores the user in
// the request context. It never rejects: handlers that can produce a
// better unauthenticated message than a blanket 401 (review submit)
// see a nil user instead.
func (m *AuthMiddleware) Attach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.repo.GetUserByToken(r.Context(), token)
		if err != nil {
			slog.Error("failed to lookup user", "error", err, "token_prefix", maskToken(token))
			next.ServeHTTP(w, r)
			return
		}
		if user == nil || !user.Active {
			slog.Warn("invalid session token", "token_prefix", maskToken(token), "remote_addr", r.RemoteAddr)
			next.ServeHTTP(w, r)
			return
		}

		// Stamp last activity asynchronously (don't block request)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := m.repo.UpdateUserLastSeen(ctx, token); err != nil {
				slog.Error("failed to update user last_seen", "error", err, "user", user.Username)
			}
		}()

		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}

// Require rejects requests that did not resolve to a user
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			respondError(w, http.StatusUnauthorized, "login_required", "please log in to continue")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractToken extracts the session token from request headers
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		if strings.HasPrefix(authHeader, "Bearer ") {
			return strings.TrimPrefix(authHeader, "Bearer ")
		}
		return authHeader
	}
	return r.Header.Get("X-Session-Token")
}

// maskToken returns first 8 chars of a token for safe logging
func maskToken(token string) string {
	if len(token) < 8 {
		return "***"
	}
	return token[:8] + "..."
}
