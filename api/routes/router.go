package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	admincontrollers "github.com/angelmondragon/storefront-backend/api/controllers/admin"
	cartcontrollers "github.com/angelmondragon/storefront-backend/api/controllers/cart"
	catalogcontrollers "github.com/angelmondragon/storefront-backend/api/controllers/catalog"
	ordercontrollers "github.com/angelmondragon/storefront-backend/api/controllers/orders"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/categories"
	checkoutsvc "github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

// Dependencies carries everything the router wires into handlers. The
// session, rate limit and idempotency collaborators are optional and must be
// left nil (not typed nil) when redis is not configured.
type Dependencies struct {
	Config *config.Config
	Logger *logger.Logger

	DB    controllers.Pinger
	Redis controllers.Pinger

	Sessions         session.AccessSessionChecker
	RateLimitStore   middleware.RateLimitStore
	IdempotencyStore middleware.IdempotencyStore

	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler

	AuthService     auth.Service
	RegisterService auth.RegisterService
	UserService     users.Service
	ProductService  product.Service
	CategoryService categories.Service
	CartService     cart.Service
	CheckoutService checkoutsvc.Service
	OrdersService   orders.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
		middleware.Metrics(deps.HTTPMetrics),
	)

	loginPolicy := middleware.LoginRateLimitPolicy(cfg.AuthRateLimit)
	registerPolicy := middleware.RegisterRateLimitPolicy(cfg.AuthRateLimit)
	authenticated := middleware.Auth(cfg.JWT, deps.Sessions, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/test", controllers.Welcome(nil))

		r.With(middleware.AuthRateLimit(registerPolicy, deps.RateLimitStore, logg)).
			Post("/register", controllers.AuthRegister(deps.RegisterService, logg))
		r.With(
			middleware.AuthRateLimit(loginPolicy, deps.RateLimitStore, logg),
			middleware.Credentials(deps.AuthService, logg),
		).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/token/refresh", controllers.AuthRefresh(deps.AuthService, logg))

		r.Get("/products", catalogcontrollers.ProductList(deps.ProductService, logg))
		r.Get("/products/{id}", catalogcontrollers.ProductDetail(deps.ProductService, logg))
		r.Get("/categories", catalogcontrollers.CategoryList(deps.CategoryService, logg))
		r.Get("/categories/{id}", catalogcontrollers.CategoryDetail(deps.CategoryService, logg))

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Use(middleware.RequireRole(enums.RoleUser, logg))
			r.Use(middleware.Idempotency(deps.IdempotencyStore, cfg.Redis.IdempotencyTTL, logg))

			r.Post("/logout", controllers.AuthLogout(deps.AuthService, logg))

			r.Get("/cart", cartcontrollers.CartFetch(deps.CartService, logg))
			r.Post("/cart/items", cartcontrollers.CartAddItem(deps.CartService, logg))
			r.Delete("/cart/items/{id}", cartcontrollers.CartRemoveItem(deps.CartService, logg))
			r.Post("/checkout", cartcontrollers.Checkout(deps.CheckoutService, logg))

			r.Get("/orders", ordercontrollers.List(deps.OrdersService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Use(middleware.RequireRole(enums.RoleAdmin, logg))

			r.Post("/products", catalogcontrollers.ProductCreate(deps.ProductService, logg))
			r.Put("/products/{id}", catalogcontrollers.ProductUpdate(deps.ProductService, logg))
			r.Delete("/products/{id}", catalogcontrollers.ProductDelete(deps.ProductService, logg))

			r.Post("/categories", catalogcontrollers.CategoryCreate(deps.CategoryService, logg))
			r.Put("/categories/{id}", catalogcontrollers.CategoryUpdate(deps.CategoryService, logg))
			r.Delete("/categories/{id}", catalogcontrollers.CategoryDelete(deps.CategoryService, logg))

			r.Get("/admin/orders", admincontrollers.OrderList(deps.OrdersService, logg))
			r.Get("/admin/users", admincontrollers.UserList(deps.UserService, logg))
			r.Post("/admin/product/{productId}/category/{categoryId}", admincontrollers.ProductCategoryAttach(deps.ProductService, logg))
			r.Delete("/admin/product/{productId}/category/{categoryId}", admincontrollers.ProductCategoryDetach(deps.ProductService, logg))
		})
	})

	return r
}
