package middleware

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// RequireRole gates a route group on role. It runs after Auth; a request that
// reached it without an identity is 401, one lacking the role is 403.
func RequireRole(role enums.Role, logg *logger.Logger) func(http.Handler) http.Handler {
	denied := pkgerrors.New(pkgerrors.CodeForbidden, "Access denied")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := Actor(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if actor.HasRole(role) {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithField(ctx, "required_role", role.String())
			}
			responses.WriteError(ctx, logg, w, denied)
		})
	}
}
