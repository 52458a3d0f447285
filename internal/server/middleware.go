package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/netgee-k/mt5-v2/internal/auth"
)

type contextKey int

const claimsKey contextKey = iota

// requireAuth validates the bearer token and stores the claims in the
// request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		claims, err := s.auth.ValidateToken(token, auth.PurposeAccess)
		if err != nil {
			s.writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userID returns the authenticated user's id from the request context.
// Handlers behind requireAuth can rely on it being present.
func userID(r *http.Request) uint {
	claims, _ := r.Context().Value(claimsKey).(*auth.Claims)
	if claims == nil {
		return 0
	}
	return claims.UserID
}
