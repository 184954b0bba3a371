package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vastralane/storefront-backend/api/controllers"
	"github.com/vastralane/storefront-backend/api/middleware"
	"github.com/vastralane/storefront-backend/internal/addresses"
	authsvc "github.com/vastralane/storefront-backend/internal/auth"
	"github.com/vastralane/storefront-backend/internal/cart"
	"github.com/vastralane/storefront-backend/internal/catalog"
	"github.com/vastralane/storefront-backend/internal/media"
	"github.com/vastralane/storefront-backend/internal/orders"
	"github.com/vastralane/storefront-backend/internal/payments"
	"github.com/vastralane/storefront-backend/internal/reporting"
	"github.com/vastralane/storefront-backend/internal/reviews"
	"github.com/vastralane/storefront-backend/internal/users"
	"github.com/vastralane/storefront-backend/internal/wishlist"
	"github.com/vastralane/storefront-backend/pkg/auth/session"
	"github.com/vastralane/storefront-backend/pkg/config"
	"github.com/vastralane/storefront-backend/pkg/db"
	"github.com/vastralane/storefront-backend/pkg/logger"
	"github.com/vastralane/storefront-backend/pkg/metrics"
	"github.com/vastralane/storefront-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker
	Registry *prometheus.Registry
	Metrics  *metrics.HTTPMetrics

	Auth      authsvc.Service
	Catalog   catalog.Service
	Cart      cart.Service
	Addresses addresses.Service
	Wishlist  wishlist.Service
	Reviews   reviews.Service
	Orders    orders.Service
	Payments  payments.Service
	Media     media.Service
	Users     users.Service
	Reporting reporting.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if d.Metrics != nil {
		r.Use(middleware.Metrics(d.Metrics))
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.Idempotency(d.Redis, logg)).Post("/register", controllers.AuthRegister(d.Auth, logg))
		r.Post("/login", controllers.AuthLogin(d.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.Auth, logg))
	})

	r.Get("/api/v1/payments/key", controllers.PaymentKey(d.Payments, logg))

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(d.Catalog, logg))
		r.Get("/{productId}", controllers.ProductDetail(d.Catalog, logg))
		r.Get("/{productId}/reviews", controllers.ReviewList(d.Reviews, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
		r.Use(middleware.Idempotency(d.Redis, logg))

		r.Post("/auth/logout", controllers.AuthLogout(d.Auth, logg))
		r.Get("/auth/me", controllers.AuthMe(d.Auth, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(d.Cart, logg))
			r.Post("/quote", controllers.CartQuote(d.Cart, logg))
			r.Post("/items", controllers.CartAddItem(d.Cart, logg))
			r.Patch("/items/{itemId}", controllers.CartUpdateItem(d.Cart, logg))
			r.Delete("/items/{itemId}", controllers.CartRemoveItem(d.Cart, logg))
			r.Delete("/", controllers.CartClear(d.Cart, logg))
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", controllers.AddressList(d.Addresses, logg))
			r.Post("/", controllers.AddressCreate(d.Addresses, logg))
			r.Patch("/{addressId}", controllers.AddressUpdate(d.Addresses, logg))
			r.Delete("/{addressId}", controllers.AddressDelete(d.Addresses, logg))
			r.Post("/{addressId}/default", controllers.AddressSetDefault(d.Addresses, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistList(d.Wishlist, logg))
			r.Post("/", controllers.WishlistAdd(d.Wishlist, logg))
			r.Delete("/{productId}", controllers.WishlistRemove(d.Wishlist, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.Checkout(d.Orders, logg))
			r.Get("/", controllers.OrderList(d.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(d.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(d.Orders, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/order", controllers.PaymentCreateOrder(d.Payments, logg))
			r.Post("/verify", controllers.PaymentVerify(d.Payments, logg))
		})

		r.Route("/products/{productId}/reviews", func(r chi.Router) {
			r.Post("/", controllers.ReviewCreate(d.Reviews, logg))
		})
		r.Route("/reviews", func(r chi.Router) {
			r.Patch("/{reviewId}", controllers.ReviewUpdate(d.Reviews, logg))
			r.Delete("/{reviewId}", controllers.ReviewDelete(d.Reviews, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, "seller", "admin"))
			r.Post("/products", controllers.ProductCreate(d.Catalog, logg))
			r.Patch("/products/{productId}", controllers.ProductUpdate(d.Catalog, logg))
			r.Delete("/products/{productId}", controllers.ProductDelete(d.Catalog, logg))

			r.Route("/media", func(r chi.Router) {
				r.Post("/upload", controllers.MediaUpload(d.Media, logg))
				r.Delete("/", controllers.MediaDelete(d.Media, logg))
				r.Get("/auth", controllers.MediaAuthParams(d.Media, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
		r.Use(middleware.RequireRole(logg, "admin"))
		r.Use(middleware.Idempotency(d.Redis, logg))

		r.Get("/dashboard", controllers.AdminDashboard(d.Reporting, logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminUserList(d.Users, logg))
			r.Patch("/{userId}/role", controllers.AdminUserUpdateRole(d.Users, logg))
			r.Patch("/{userId}/active", controllers.AdminUserSetActive(d.Users, logg))
			r.Delete("/{userId}", controllers.AdminUserDelete(d.Users, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(d.Orders, logg))
			r.Get("/{orderId}", controllers.AdminOrderDetail(d.Orders, logg))
			r.Patch("/{orderId}/status", controllers.AdminOrderUpdateStatus(d.Orders, logg))
			r.Delete("/{orderId}", controllers.AdminOrderDelete(d.Orders, logg))
		})
	})

	return r
}
