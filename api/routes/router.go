package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/castellanosdev/shopline-backend/api/controllers"
	"github.com/castellanosdev/shopline-backend/api/middleware"
	"github.com/castellanosdev/shopline-backend/internal/auth"
	"github.com/castellanosdev/shopline-backend/internal/cart"
	checkoutsvc "github.com/castellanosdev/shopline-backend/internal/checkout"
	"github.com/castellanosdev/shopline-backend/internal/coupons"
	"github.com/castellanosdev/shopline-backend/internal/orders"
	"github.com/castellanosdev/shopline-backend/pkg/config"
	"github.com/castellanosdev/shopline-backend/pkg/db"
	"github.com/castellanosdev/shopline-backend/pkg/logger"
	pkgredis "github.com/castellanosdev/shopline-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	registry *prometheus.Registry,
	authService auth.Service,
	cartService cart.Service,
	checkoutService checkoutsvc.Service,
	couponService coupons.Service,
	ordersService orders.Service,
) http.Handler {
	var redisPinger pkgredis.Pinger
	var idempotencyStore pkgredis.IdempotencyStore
	if redisClient != nil {
		redisPinger = redisClient
		idempotencyStore = redisClient
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/auth/v1", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(authService, logg))
		r.Post("/login", controllers.AuthLogin(authService, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/v1/cart", func(r chi.Router) {
			r.Get("/", controllers.CartList(cartService, logg))
			r.Post("/", controllers.CartAdd(cartService, logg))
			r.Patch("/{lineId}", controllers.CartUpdate(cartService, logg))
			r.Delete("/{lineId}", controllers.CartRemove(cartService, logg))
		})

		r.Post("/v1/checkout", controllers.Checkout(checkoutService, logg))

		r.Route("/v1/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(ordersService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(ordersService, logg))
			r.Patch("/{orderId}", controllers.OrderUpdate(ordersService, logg))
			r.Delete("/{orderId}", controllers.OrderDelete(ordersService, logg))
			r.Post("/{orderId}/move-to-cart", controllers.OrderMoveToCart(checkoutService, cartService, logg))
			r.Post("/{orderId}/coupon", controllers.CouponApply(couponService, logg))
			r.Delete("/{orderId}/coupon", controllers.CouponRemove(couponService, logg))
			r.Get("/{orderId}/coupons/recommended", controllers.CouponRecommendations(couponService, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/v1/orders", func(r chi.Router) {
			r.Post("/", controllers.AdminOrderCreate(ordersService, logg))
			r.Get("/", controllers.AdminOrderList(ordersService, logg))
			r.Patch("/{orderId}/status", controllers.AdminOrderUpdateStatus(ordersService, logg))
		})
		r.Post("/v1/coupons", controllers.AdminCouponUpsert(couponService, logg))
	})

	return r
}
