package middleware

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// Roles a rentdesk account can hold. Admins and members both manage their own
// properties; the distinction is kept for account administration.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// RequireRole lets a request through only when the role Auth stored in the
// context is one of roles. A missing role is 401, a foreign one 403.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok || role == "" {
				WriteProblem(w, http.StatusUnauthorized, "authentication required")
				return
			}

			if _, match := allowed[role]; !match {
				log.Debug().Str("role", role).Str("path", r.URL.Path).Msg("role rejected")
				WriteProblem(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
