package middleware

import (
	"net/http"

	"github.com/wirebazaar/wirebazaar-backend/api/responses"
	pkgerrors "github.com/wirebazaar/wirebazaar-backend/pkg/errors"
	"github.com/wirebazaar/wirebazaar-backend/pkg/logger"
)

// RequireRole must run after Auth. A customer token on an owner route is a 403,
// not a 401: the caller is known, just not allowed.
func RequireRole(role string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if actual := RoleFromContext(ctx); actual != role {
				if logg != nil {
					ctx = logg.WithFields(ctx, map[string]any{
						"required_role": role,
						"actor_role":    actual,
						"user_id":       UserIDFromContext(ctx),
					})
				}
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, role+" role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
