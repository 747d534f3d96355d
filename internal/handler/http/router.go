package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/HexaTeam-By-Epitech/area-sub002/pkg/health"
	"github.com/HexaTeam-By-Epitech/area-sub002/pkg/middleware"
)

// RouterConfig bundles the dependencies of the HTTP router.
type RouterConfig struct {
	ServiceName   string
	Environment   string
	CORSOrigins   []string
	Logger        *slog.Logger
	AreaHandler   *AreaHandler
	Health        *health.Handler
	ValidateToken middleware.TokenValidator
	TracingOn     bool
}

// NewRouter builds the chi router with the full middleware chain and all
// routes mounted.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.TracingOn {
		r.Use(middleware.Tracing(cfg.ServiceName))
	}
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSOrigins
	corsCfg.Environment = cfg.Environment
	r.Use(middleware.CORS(corsCfg))

	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequestLogger(cfg.Logger))

			r.Get("/catalog/actions", cfg.AreaHandler.ListActions)
			r.Get("/catalog/reactions", cfg.AreaHandler.ListReactions)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.ValidateToken))
			// After Auth so the request-scoped logger carries the user id.
			r.Use(middleware.RequestLogger(cfg.Logger))

			r.Post("/areas", cfg.AreaHandler.CreateArea)
			r.Get("/areas", cfg.AreaHandler.ListAreas)
			r.Delete("/areas/{id}", cfg.AreaHandler.DeleteArea)

			r.With(middleware.RequireRole("admin")).
				Post("/areas/trigger", cfg.AreaHandler.TriggerAreas)
		})
	})

	return r
}
