package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/swisspair/pairing/internal/auth"
)

type contextKey string

const DirectorIDKey contextKey = "director_id"

// Auth validates the director's bearer token and adds their ID to context.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, `{"error":"authorization header required"}`, http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, `{"error":"invalid authorization header format"}`, http.StatusUnauthorized)
			return
		}

		claims, err := auth.ValidateToken(parts[1])
		if err != nil {
			http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), DirectorIDKey, claims.DirectorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetDirectorID extracts the authenticated director's ID from context.
func GetDirectorID(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(DirectorIDKey).(uint64)
	return id, ok
}
