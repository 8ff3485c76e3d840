package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avolkov/orderflow-backend/api/controllers"
	"github.com/avolkov/orderflow-backend/api/middleware"
	"github.com/avolkov/orderflow-backend/internal/auth"
	"github.com/avolkov/orderflow-backend/internal/contacts"
	"github.com/avolkov/orderflow-backend/internal/importer"
	"github.com/avolkov/orderflow-backend/internal/orders"
	"github.com/avolkov/orderflow-backend/internal/shops"
	"github.com/avolkov/orderflow-backend/internal/users"
	"github.com/avolkov/orderflow-backend/pkg/config"
	"github.com/avolkov/orderflow-backend/pkg/db"
	"github.com/avolkov/orderflow-backend/pkg/enums"
	"github.com/avolkov/orderflow-backend/pkg/logger"
	"github.com/avolkov/orderflow-backend/pkg/metrics"
	"github.com/avolkov/orderflow-backend/pkg/redis"
	"github.com/avolkov/orderflow-backend/pkg/reporting"
)

// RouterParams bundles everything the HTTP surface depends on. Nil optional
// dependencies (redis, pubsub, metrics) degrade gracefully.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	Reporter reporting.Reporter

	DB     db.Pinger
	Redis  *redis.Client
	PubSub controllers.Pinger

	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	AuthService     auth.Service
	RegisterService auth.RegisterService
	UserService     users.Service
	ShopService     shops.Service
	ImportService   importer.Service
	OrderService    orders.Service
	ContactService  contacts.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	var limiter redis.Limiter
	var redisPinger redis.Pinger
	if p.Redis != nil {
		limiter = p.Redis
		redisPinger = p.Redis
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg, p.Reporter),
		middleware.RequestID(logg),
		middleware.Logging(logg, p.HTTPMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.RateLimit.LoginWindow,
		cfg.RateLimit.LoginIPLimit,
		cfg.RateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.RateLimit.RegisterWindow,
		cfg.RateLimit.RegisterIPLimit,
		cfg.RateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, redisPinger, p.PubSub))
	})

	if p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, limiter, logg)).
				Post("/register", controllers.AuthRegister(p.RegisterService, logg))
			r.Post("/register/confirm", controllers.AuthConfirm(p.RegisterService, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).
				Post("/login", controllers.AuthLogin(p.AuthService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, logg))
				r.Get("/details", controllers.AccountDetails(p.UserService, logg))
				r.Post("/details", controllers.AccountUpdate(p.UserService, logg))
			})
		})

		r.Get("/categories", controllers.CategoryList(p.ShopService, logg))
		r.Get("/shops", controllers.ShopList(p.ShopService, logg))
		r.Get("/products", controllers.ProductSearch(p.ShopService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Route("/basket", func(r chi.Router) {
				r.Get("/", controllers.BasketFetch(p.OrderService, logg))
				r.Post("/", controllers.BasketAdd(p.OrderService, logg))
				r.Put("/", controllers.BasketUpdate(p.OrderService, logg))
				r.Delete("/", controllers.BasketRemove(p.OrderService, logg))
			})

			r.Route("/order", func(r chi.Router) {
				r.Get("/", controllers.OrderList(p.OrderService, logg))
				r.Post("/", controllers.OrderPlace(p.OrderService, logg))
			})

			r.Route("/contact", func(r chi.Router) {
				r.Get("/", controllers.ContactList(p.ContactService, logg))
				r.Post("/", controllers.ContactCreate(p.ContactService, logg))
				r.Put("/", controllers.ContactUpdate(p.ContactService, logg))
				r.Delete("/", controllers.ContactDelete(p.ContactService, logg))
			})

			r.Route("/partner", func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.UserRoleShop), logg))
				r.With(middleware.UserRateLimit(
					"import",
					cfg.RateLimit.ImportWindow,
					cfg.RateLimit.ImportUserLimit,
					limiter,
					logg,
				)).Post("/update", controllers.PartnerUpdate(p.ImportService, logg))
				r.Get("/state", controllers.PartnerStateFetch(p.ShopService, logg))
				r.Post("/state", controllers.PartnerStateUpdate(p.ShopService, logg))
				r.Get("/orders", controllers.PartnerOrders(p.OrderService, logg))
			})
		})
	})

	return r
}
