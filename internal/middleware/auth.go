// Package middleware provides the authentication gate for protected routes.
package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/moodsync/moodsync-api/shared/auth"
)

type contextKey struct{}

// userClaimsKey carries the verified token claims through the request context.
var userClaimsKey = contextKey{}

// ClaimsFromContext returns the claims attached by Authenticate, if any.
func ClaimsFromContext(ctx context.Context) (*auth.TokenClaims, bool) {
	claims, ok := ctx.Value(userClaimsKey).(*auth.TokenClaims)
	return claims, ok
}

// ContextWithClaims attaches claims to a context. Exposed for tests.
func ContextWithClaims(ctx context.Context, claims *auth.TokenClaims) context.Context {
	return context.WithValue(ctx, userClaimsKey, claims)
}

// Authenticate requires a valid "Authorization: Bearer <token>" header and
// attaches the decoded claims to the request context.
func Authenticate(jwtAuth *auth.JWTAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				unauthorized(w, "Authentication required. No token provided.")
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := jwtAuth.ValidateToken(tokenStr)
			if err != nil {
				unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := ContextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authorize rejects authenticated requests whose role is not in allowedRoles.
// It must run after Authenticate.
func Authorize(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				unauthorized(w, "Authentication required")
				return
			}

			if !slices.Contains(allowedRoles, claims.Role) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"success":false,"message":"Insufficient permissions"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"success":false,"message":"` + message + `"}`))
}
