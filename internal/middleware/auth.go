// internal/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/unclebandit/wealthyelephant-backend/internal/model"
)

type ctxKey int

const userKey ctxKey = iota

// Authenticator resolves a bearer token to the admin it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.AdminUser, error)
}

// WithUser stores the authenticated admin on ctx.
func WithUser(ctx context.Context, u *model.AdminUser) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFrom returns the admin stored by RequireAdmin, or nil.
func UserFrom(ctx context.Context) *model.AdminUser {
	u, _ := ctx.Value(userKey).(*model.AdminUser)
	return u
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// RequireAdmin rejects requests without a valid admin token. The admin is
// looked up on every request so deleted accounts lose access immediately.
func RequireAdmin(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "No token provided")
				return
			}

			user, err := a.Authenticate(r.Context(), token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
