package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/kirana/pkg/auth"
	"github.com/shashiranjanraj/kirana/pkg/response"
)

type claimsKey struct{}

// Auth validates the Bearer token and stores the verified claims in the
// request context. Handlers behind it can rely on ClaimsFromCtx returning
// a valid principal.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			response.Unauthorized(w)
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			response.Unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromCtx returns the verified token claims stored by Auth.
func ClaimsFromCtx(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok
}

// UserIDFromCtx returns the authenticated user's ID, or 0 when the request
// is anonymous.
func UserIDFromCtx(ctx context.Context) uint {
	if claims, ok := ClaimsFromCtx(ctx); ok {
		return claims.UserID
	}
	return 0
}

// RoleFromCtx returns the authenticated user's role, or "" when anonymous.
func RoleFromCtx(ctx context.Context) string {
	if claims, ok := ClaimsFromCtx(ctx); ok {
		return claims.Role
	}
	return ""
}
