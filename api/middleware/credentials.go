package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	pkgauth "github.com/angelmondragon/storefront-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Authenticator resolves an email/password pair to an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (pkgauth.Identity, error)
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Credentials checks the JSON email/password body and, on success, places the
// identity on the context. Bad credentials leave the context untouched so the
// downstream handler decides how to answer.
func Credentials(authn Authenticator, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req credentialsRequest
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			id, err := authn.Authenticate(r.Context(), strings.TrimSpace(req.Email), req.Password)
			if err != nil {
				if pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
				if logg != nil {
					logg.Warn(r.Context(), "auth.credentials.rejected")
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithIdentity(r.Context(), id)
			if logg != nil {
				ctx = logg.WithUserID(ctx, id.UserID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
