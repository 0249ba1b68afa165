package cart

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const msgOrderPlaced = "Order placed successfully"

type checkoutResponse struct {
	Message string `json:"message"`
	OrderID uint   `json:"orderId"`
	Total   string `json:"total"`
}

// Checkout converts the caller's cart into an order.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		actor, err := middleware.Actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Execute(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{"order_id": result.OrderID, "total": result.Total})
			logg.Info(ctx, "checkout.placed")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			Message: msgOrderPlaced,
			OrderID: result.OrderID,
			Total:   result.Total,
		})
	}
}
