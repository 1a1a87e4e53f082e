package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openlims/lims-backend/api/controllers"
	"github.com/openlims/lims-backend/api/middleware"
	"github.com/openlims/lims-backend/api/responses"
	"github.com/openlims/lims-backend/internal/auth"
	component "github.com/openlims/lims-backend/internal/components"
	"github.com/openlims/lims-backend/pkg/config"
	"github.com/openlims/lims-backend/pkg/db"
	pkgerrors "github.com/openlims/lims-backend/pkg/errors"
	"github.com/openlims/lims-backend/pkg/logger"
	"github.com/openlims/lims-backend/pkg/metrics"
	"github.com/openlims/lims-backend/pkg/redis"
)

// Deps carries everything the router needs wired in.
type Deps struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               db.Pinger
	Redis            *redis.Client
	AuthService      auth.Service
	ComponentService component.Service
	HTTPMetrics      *metrics.HTTPMetrics
	MetricsGatherer  prometheus.Gatherer
}

// NewRouter assembles the HTTP surface.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.CORS),
	)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), nil, w, pkgerrors.New(pkgerrors.CodeNotFound, "Endpoint not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteJSON(w, http.StatusMethodNotAllowed, responses.ErrorBody{Error: "Method not allowed"})
	})

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)

	var cache redis.Pinger
	if deps.Redis != nil {
		cache = deps.Redis
	}

	r.Get("/", controllers.Home(cfg))
	r.Get("/health", controllers.Health(cfg))
	r.Get("/health/ready", controllers.Readiness(cfg, deps.DB, cache))

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	r.With(rateLimit(loginPolicy, deps.Redis, logg)).
		Post("/login", controllers.AuthLogin(deps.AuthService, logg))

	r.Route("/components", func(r chi.Router) {
		r.Get("/", controllers.ComponentsList(deps.ComponentService, logg, cfg.Pagination))
		r.Get("/{componentID}", controllers.ComponentGet(deps.ComponentService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Post("/", controllers.ComponentCreate(deps.ComponentService, logg))
			r.Post("/{componentID}/stock", controllers.ComponentStock(deps.ComponentService, logg))
			r.Get("/{componentID}/transactions", controllers.ComponentTransactions(deps.ComponentService, logg, cfg.Pagination))
		})
	})

	return r
}

func rateLimit(policy middleware.AuthRateLimitPolicy, client *redis.Client, logg *logger.Logger) func(http.Handler) http.Handler {
	if client == nil {
		return middleware.AuthRateLimit(policy, nil, logg)
	}
	return middleware.AuthRateLimit(policy, client, logg)
}
