package admin

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	pkgauth "github.com/angelmondragon/storefront-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const (
	msgCategoryAttached = "Category added to product"
	msgCategoryDetached = "Category removed from product"
)

// ProductCategoryAttach links a category to a product. Attaching twice is a no-op.
func ProductCategoryAttach(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return linkHandler(svc, logg, msgCategoryAttached, product.Service.AttachCategory)
}

func ProductCategoryDetach(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return linkHandler(svc, logg, msgCategoryDetached, product.Service.DetachCategory)
}

type linkOp = func(product.Service, context.Context, pkgauth.Identity, uint, uint) error

func linkHandler(svc product.Service, logg *logger.Logger, message string, op linkOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		actor, err := middleware.Actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		categoryID, err := validators.ParseIDParam(r, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := op(svc, r.Context(), actor, productID, categoryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, message)
	}
}
