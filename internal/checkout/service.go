package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/checkout/helpers"
	"github.com/angelmondragon/storefront-backend/internal/checkout/reservation"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	pkgauth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

const msgCartEmpty = "Cart is empty"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type reserveFunc func(ctx context.Context, tx *gorm.DB, requests []reservation.StockRequest) (map[uint]models.Product, error)

// Service converts a shopper's cart into an order.
type Service interface {
	Execute(ctx context.Context, actor pkgauth.Identity) (*Result, error)
}

// Result identifies the placed order.
type Result struct {
	OrderID uint   `json:"orderId"`
	Total   string `json:"total"`
}

type service struct {
	tx         txRunner
	cartRepo   *cart.Repository
	ordersRepo orders.Repository
	reserve    reserveFunc
	metrics    *metrics.CheckoutMetrics
	now        func() time.Time
}

// ServiceParams wires the checkout service. Metrics and Now are optional.
type ServiceParams struct {
	Tx         txRunner
	CartRepo   *cart.Repository
	OrdersRepo orders.Repository
	Metrics    *metrics.CheckoutMetrics
	Now        func() time.Time
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.OrdersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		tx:         params.Tx,
		cartRepo:   params.CartRepo,
		ordersRepo: params.OrdersRepo,
		reserve:    reservation.ReserveStock,
		metrics:    params.Metrics,
		now:        now,
	}, nil
}

// Execute places an order for every line in the actor's cart, decrements
// stock and empties the cart. Nothing is written unless every line can be
// served.
func (s *service) Execute(ctx context.Context, actor pkgauth.Identity) (*Result, error) {
	if actor.UserID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	var placed *models.Order

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		record, err := cartRepo.FindByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeInvalidState, msgCartEmpty)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(record.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeInvalidState, msgCartEmpty)
		}

		requests := make([]reservation.StockRequest, len(record.Items))
		for i, item := range record.Items {
			requests[i] = reservation.StockRequest{ProductID: item.ProductID, Qty: item.Quantity}
		}
		products, err := s.reserve(ctx, tx, requests)
		if err != nil {
			return err
		}

		items, orderTotal := helpers.BuildOrderItems(record.Items, products)
		order := &models.Order{
			UserID:    actor.UserID,
			CreatedAt: s.now().UTC(),
			Total:     orderTotal,
			Items:     items,
		}
		created, err := ordersRepo.CreateOrder(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if err := cartRepo.ClearItems(ctx, record.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		placed = created
		return nil
	})
	if err != nil {
		s.metrics.IncOutcome(outcomeFor(err))
		return nil, err
	}

	s.metrics.IncOutcome(metrics.OutcomePlaced)
	s.metrics.ObserveOrder(placed.Total)
	return &Result{OrderID: placed.ID, Total: product.FormatMoney(placed.Total)}, nil
}

func outcomeFor(err error) string {
	switch pkgerrors.CodeOf(err) {
	case pkgerrors.CodeInvalidState:
		return metrics.OutcomeEmptyCart
	case pkgerrors.CodeInsufficientStock:
		return metrics.OutcomeInsufficientStock
	default:
		return metrics.OutcomeError
	}
}
