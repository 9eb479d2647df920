package auth

import (
	"context"
	"net/http"
	"strings"

	"atsea/pkg/kit"
)

type ctxKey string

const userKey ctxKey = "user"

type User struct {
	CustomerID int64
	Username   string
	Role       string
}

func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey).(User)
	return u, ok
}

// RequireAuth rejects requests without a valid Bearer access token and puts
// the authenticated user on the request context.
func RequireAuth(jwt *TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				kit.WriteError(w, r, http.StatusUnauthorized, "missing token", nil)
				return
			}

			claims, err := jwt.Parse(strings.TrimPrefix(authz, "Bearer "), TokenTypeAccess)
			if err != nil || claims.Username == "" {
				kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, User{
				CustomerID: claims.CustomerID,
				Username:   claims.Username,
				Role:       claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
