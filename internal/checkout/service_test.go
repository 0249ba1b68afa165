package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	pkgauth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

var fixedNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	db       *db.Client
	cart     cart.Service
	checkout Service
	registry *prometheus.Registry
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client := dbtest.Open(t)
	cartRepo := cart.NewRepository(client.DB())
	cartSvc, err := cart.NewService(cartRepo, client, product.NewRepository(client.DB()))
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	svc, err := NewService(ServiceParams{
		Tx:         client,
		CartRepo:   cartRepo,
		OrdersRepo: orders.NewRepository(client.DB()),
		Metrics:    metrics.NewCheckoutMetrics(reg),
		Now:        func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return fixture{db: client, cart: cartSvc, checkout: svc, registry: reg}
}

func (f fixture) product(t *testing.T, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(t, f.db.DB().Omit("Categories").Create(p).Error)
	return p
}

func (f fixture) add(t *testing.T, actor pkgauth.Identity, productID uint, qty int) {
	t.Helper()
	_, err := f.cart.AddItem(context.Background(), actor, cart.AddItemInput{ProductID: productID, Quantity: &qty})
	require.NoError(t, err)
}

func (f fixture) stock(t *testing.T, id uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, f.db.DB().First(&p, id).Error)
	return p.Stock
}

func shopper(id uint) pkgauth.Identity {
	return pkgauth.Identity{UserID: id, Roles: []enums.Role{enums.RoleUser}}
}

func TestExecutePlacesOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "Product A", "10", 5)
	b := f.product(t, "Product B", "5", 3)
	f.add(t, shopper(1), a.ID, 2)
	f.add(t, shopper(1), b.ID, 1)

	result, err := f.checkout.Execute(ctx, shopper(1))
	require.NoError(t, err)
	assert.NotZero(t, result.OrderID)
	assert.Equal(t, "25.00", result.Total)

	assert.Equal(t, 3, f.stock(t, a.ID))
	assert.Equal(t, 2, f.stock(t, b.ID))

	view, err := f.cart.GetCart(ctx, shopper(1))
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	var order models.Order
	require.NoError(t, f.db.DB().Preload("Items").First(&order, result.OrderID).Error)
	assert.Equal(t, uint(1), order.UserID)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(25)))
	assert.True(t, order.CreatedAt.Equal(fixedNow))
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Product A", order.Items[0].ProductName)
	assert.True(t, order.Items[0].Price.Equal(decimal.NewFromInt(10)))

	var carts int64
	require.NoError(t, f.db.DB().Model(&models.Cart{}).Where("user_id = ?", 1).Count(&carts).Error)
	assert.EqualValues(t, 1, carts)
}

func TestExecuteIsAtomicOnInsufficientStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "Plenty", "10", 10)
	b := f.product(t, "Scarce", "5", 2)
	f.add(t, shopper(1), a.ID, 4)
	f.add(t, shopper(1), b.ID, 2)

	// Stock drops after the item was added.
	require.NoError(t, f.db.DB().Model(&models.Product{}).Where("id = ?", b.ID).Update("stock", 1).Error)

	_, err := f.checkout.Execute(ctx, shopper(1))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, pkgerrors.CodeOf(err))
	assert.Equal(t, "Insufficient stock for product: Scarce", pkgerrors.As(err).Message())

	assert.Equal(t, 10, f.stock(t, a.ID))
	assert.Equal(t, 1, f.stock(t, b.ID))

	view, err := f.cart.GetCart(ctx, shopper(1))
	require.NoError(t, err)
	assert.Len(t, view.Items, 2)

	var orderCount int64
	require.NoError(t, f.db.DB().Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)
}

func TestExecuteRejectsEmptyCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.checkout.Execute(ctx, shopper(9))
	assert.Equal(t, pkgerrors.CodeInvalidState, pkgerrors.CodeOf(err))
	assert.Equal(t, "Cart is empty", pkgerrors.As(err).Message())

	_, err = f.cart.GetCart(ctx, shopper(9))
	require.NoError(t, err)
	_, err = f.checkout.Execute(ctx, shopper(9))
	assert.Equal(t, pkgerrors.CodeInvalidState, pkgerrors.CodeOf(err))
}

func TestExecuteRecordsOutcomes(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Thing", "3", 1)
	f.add(t, shopper(1), p.ID, 1)

	_, err := f.checkout.Execute(context.Background(), shopper(1))
	require.NoError(t, err)
	_, err = f.checkout.Execute(context.Background(), shopper(1))
	require.Error(t, err)

	families, err := f.registry.Gather()
	require.NoError(t, err)
	outcomes := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "checkout_attempts_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "outcome" {
					outcomes[label.GetValue()] = m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, map[string]float64{
		metrics.OutcomePlaced:    1,
		metrics.OutcomeEmptyCart: 1,
	}, outcomes)
}

func TestExecuteRequiresIdentity(t *testing.T) {
	f := newFixture(t)
	_, err := f.checkout.Execute(context.Background(), pkgauth.Identity{})
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
}
