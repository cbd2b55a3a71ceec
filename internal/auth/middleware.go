// internal/auth/middleware.go
// Identity comes from the upstream gateway, which authenticates the caller
// and forwards the user id in a trusted header

package auth

import (
	"context"
	"net/http"
	"strconv"

	"github.com/imadgeboyega/kiekky-matching/internal/common/utils"
)

// UserIDHeader carries the authenticated user id set by the gateway
const UserIDHeader = "X-User-ID"

type contextKey string

const userIDKey contextKey = "userID"

// Middleware extracts the gateway identity into the request context
type Middleware struct{}

// NewMiddleware creates a new auth middleware
func NewMiddleware() *Middleware {
	return &Middleware{}
}

// Authenticate rejects requests without a valid gateway identity
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := parseUserID(r.Header.Get(UserIDHeader))
		if !ok {
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid user identity")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func parseUserID(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// WithUserID stores the caller id in ctx
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserIDFromContext extracts user ID from request context
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}
