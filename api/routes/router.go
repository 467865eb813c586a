package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rahulverma/medibill-gateway/api/controllers"
	countercontrollers "github.com/rahulverma/medibill-gateway/api/controllers/counters"
	medicinecontrollers "github.com/rahulverma/medibill-gateway/api/controllers/medicines"
	"github.com/rahulverma/medibill-gateway/api/middleware"
	"github.com/rahulverma/medibill-gateway/internal/billing"
	countersvc "github.com/rahulverma/medibill-gateway/internal/counters"
	searchsvc "github.com/rahulverma/medibill-gateway/internal/search"
	"github.com/rahulverma/medibill-gateway/pkg/config"
	"github.com/rahulverma/medibill-gateway/pkg/logger"
	"github.com/rahulverma/medibill-gateway/pkg/metrics"
	"github.com/rahulverma/medibill-gateway/pkg/pharmacy"
	pkgredis "github.com/rahulverma/medibill-gateway/pkg/redis"
	"github.com/rahulverma/medibill-gateway/pkg/session"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *pkgredis.Client,
	pharmacyClient *pharmacy.Client,
	sessions *session.Manager,
	counterStore *countersvc.Store,
	searchService *searchsvc.Service,
	billingService *billing.Service,
	serviceMetrics *metrics.ServiceMetrics,
	promRegistry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(),
		middleware.Logging(logg, serviceMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUserLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, redisClient, pharmacyClient))
	})

	if promRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/session", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
			Post("/login", controllers.SessionLogin(pharmacyClient, sessions, cfg.JWT, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Post("/logout", controllers.SessionLogout(sessions, logg))
		})
	})

	counterHandlers := countercontrollers.NewHandlers(counterStore, searchService, billingService, sessions, logg)
	medicineHandlers := medicinecontrollers.NewHandlers(searchService, sessions, cfg.Counters.Count, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, cfg.Idempotency, logg))

		r.Route("/counters", func(r chi.Router) {
			r.Get("/", counterHandlers.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", counterHandlers.Get)
				r.Post("/select", counterHandlers.Select)
				r.Patch("/customer", counterHandlers.UpdateCustomer)
				r.Patch("/payment-method", counterHandlers.SetPaymentMethod)
				r.Post("/items", counterHandlers.AddItem)
				r.Delete("/items/{itemId}", counterHandlers.RemoveItem)
				r.Post("/clear", counterHandlers.Clear)
				r.Get("/total", counterHandlers.Total)
				r.Post("/submit", counterHandlers.Submit)
			})
		})

		r.Route("/medicines", func(r chi.Router) {
			r.Get("/search", medicineHandlers.Search)
			r.Get("/{medicineId}", medicineHandlers.Detail)
		})
	})

	return r
}
