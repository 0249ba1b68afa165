package middleware

import (
	"context"
	"net/http"

	pkgauth "github.com/angelmondragon/storefront-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type contextKey string

const ctxIdentity contextKey = "identity"

// IdentityFromContext returns the caller placed on the context by Auth or Credentials.
func IdentityFromContext(ctx context.Context) (pkgauth.Identity, bool) {
	if ctx == nil {
		return pkgauth.Identity{}, false
	}
	id, ok := ctx.Value(ctxIdentity).(pkgauth.Identity)
	if !ok || id.UserID == 0 {
		return pkgauth.Identity{}, false
	}
	return id, true
}

// WithIdentity injects the authenticated caller into the context.
func WithIdentity(ctx context.Context, id pkgauth.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, id)
}

// Actor returns the authenticated caller of r or an UNAUTHORIZED error.
func Actor(r *http.Request) (pkgauth.Identity, error) {
	if r == nil {
		return pkgauth.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		return pkgauth.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return id, nil
}
