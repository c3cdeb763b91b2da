package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/shopfront-backend/api/controllers"
	cartcontrollers "github.com/angelmondragon/shopfront-backend/api/controllers/cart"
	"github.com/angelmondragon/shopfront-backend/api/middleware"
	"github.com/angelmondragon/shopfront-backend/internal/auth"
	"github.com/angelmondragon/shopfront-backend/internal/cart"
	product "github.com/angelmondragon/shopfront-backend/internal/products"
	"github.com/angelmondragon/shopfront-backend/internal/users"
	"github.com/angelmondragon/shopfront-backend/pkg/auth/session"
	"github.com/angelmondragon/shopfront-backend/pkg/config"
	"github.com/angelmondragon/shopfront-backend/pkg/enums"
	"github.com/angelmondragon/shopfront-backend/pkg/logger"
	"github.com/angelmondragon/shopfront-backend/pkg/metrics"
	"github.com/angelmondragon/shopfront-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	readiness map[string]controllers.Pinger,
	idempotencyStore redis.IdempotencyStore,
	rateLimitStore middleware.RateLimitStore,
	sessionChecker session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
	authService auth.Service,
	userService users.Service,
	productService product.Service,
	cartService cart.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.App.FrontendOrigin),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	requireAuth := middleware.Auth(cfg.JWT, sessionChecker, logg)
	requireAdmin := middleware.RequireRole(logg, enums.UserRoleAdmin)
	idempotent := middleware.Idempotency(idempotencyStore, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readiness, logg))
	})
	r.Handle("/metrics", metrics.Handler(gatherer))

	r.With(middleware.AuthRateLimit(loginPolicy, rateLimitStore, logg)).Post("/api/auth/login", controllers.AuthLogin(authService, cfg.JWT, logg))
	r.With(middleware.AuthRateLimit(registerPolicy, rateLimitStore, logg), idempotent).Post("/api/auth/register", controllers.AuthRegister(authService, cfg.JWT, logg))
	r.Post("/api/auth/logout", controllers.AuthLogout(authService, cfg.JWT, logg))
	r.Post("/api/auth/refresh", controllers.AuthRefresh(authService, cfg.JWT, logg))
	r.With(requireAuth).Get("/api/auth/me", controllers.AuthMe(authService, logg))

	r.Get("/api/products", controllers.ProductList(productService, logg))
	r.Get("/api/products/{id}", controllers.ProductDetail(productService, logg))

	// full paths keep route patterns exact for idempotency matching and metrics labels
	r.Group(func(r chi.Router) {
		r.Use(requireAuth, requireAdmin)
		r.With(idempotent).Post("/api/products", controllers.AdminCreateProduct(productService, logg))
		r.Put("/api/products/{id}", controllers.AdminUpdateProduct(productService, logg))
		r.Delete("/api/products/{id}", controllers.AdminDeleteProduct(productService, logg))

		r.Get("/api/users", controllers.AdminListUsers(userService, logg))
		r.Get("/api/users/{id}", controllers.AdminGetUser(userService, logg))
		r.Patch("/api/users/{id}/role", controllers.AdminUpdateUserRole(userService, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAuth, idempotent)
		r.Get("/api/cart", cartcontrollers.CartFetch(cartService, logg))
		r.Post("/api/cart/items", cartcontrollers.CartAddItem(cartService, logg))
		r.Put("/api/cart/items/{productId}", cartcontrollers.CartUpdateItem(cartService, logg))
		r.Delete("/api/cart/items/{productId}", cartcontrollers.CartRemoveItem(cartService, logg))
		r.Delete("/api/cart/clear", cartcontrollers.CartClear(cartService, logg))
	})

	return r
}
