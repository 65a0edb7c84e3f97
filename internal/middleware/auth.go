package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/yhamdani/locadrive/internal/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// TokenAuth enforces bearer-token authentication. On success it stores the
// verified token claims in the request context for downstream handlers.
func TokenAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			claims, err := auth.ParseToken(secret, token)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaimsFromContext extracts the verified token claims from the request
// context. Returns nil if not present.
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c, ok := ctx.Value(claimsKey).(*auth.Claims); ok {
		return c
	}
	return nil
}

// GetUserIDFromContext extracts the authenticated account id from the
// request context. Returns an empty string if not found.
func GetUserIDFromContext(ctx context.Context) string {
	if c := GetClaimsFromContext(ctx); c != nil {
		return c.Subject
	}
	return ""
}
