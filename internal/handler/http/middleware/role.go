package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dairy-admin/dairy-hr-backend/internal/handler/http/response"
	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// RequireRole lets the request through when the role claim is one of roles.
func RequireRole(roles ...jwt.Role) func(http.Handler) http.Handler {
	allowed := make([]string, 0, len(roles))
	for _, role := range roles {
		allowed = append(allowed, string(role))
	}
	denied := fmt.Sprintf("Insufficient permissions: requires one of %s", strings.Join(allowed, ", "))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Forbidden(w, denied)
				return
			}

			roleStr, ok := claims["role"].(string)
			if !ok {
				response.Forbidden(w, denied)
				return
			}

			for _, role := range roles {
				if jwt.Role(roleStr) == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.Forbidden(w, denied)
		})
	}
}

// RequireManager requires hr_manager or admin role
func RequireManager(next http.Handler) http.Handler {
	return RequireRole(jwt.RoleHRManager, jwt.RoleAdmin)(next)
}
