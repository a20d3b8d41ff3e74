package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// RequireUser rejects requests that reach it without an authenticated user.
func RequireUser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := UserIDFromContext(r.Context())
			if !ok || uid == uuid.Nil {
				WriteProblem(w, http.StatusForbidden, "valid user required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
