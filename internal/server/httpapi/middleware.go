package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/mydutch/internal/common"
	"github.com/dmitrijs2005/mydutch/internal/server/auth"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// requireAuth extracts the bearer access token, verifies it locally, and
// stores the subject in the request context. Every verification failure is
// reported as a uniform 401 so callers learn nothing about why a token was
// rejected.
func (s *HTTPServer) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		if !strings.HasPrefix(header, common.BearerPrefix) {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		token := strings.TrimPrefix(header, common.BearerPrefix)

		userID, err := auth.GetUserIDFromToken(token, auth.TokenKindAccess, s.jwtSecret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext returns the authenticated user's ID set by requireAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}
