// Package httptransport assembles the HTTP API: public catalog and
// registration routes, the admin surface behind JWT auth, health probes,
// and the Prometheus endpoint.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"treasurehunt/internal/auth"
	"treasurehunt/internal/campaign"
	"treasurehunt/internal/health"
	"treasurehunt/internal/mailqueue"
	"treasurehunt/internal/plan"
	"treasurehunt/internal/platform/metrics"
	"treasurehunt/internal/platform/middleware"
	"treasurehunt/internal/registration"
	"treasurehunt/internal/settings"
	"treasurehunt/internal/upload"
	"treasurehunt/pkg/platform/httputil"
)

const requestTimeout = 60 * time.Second

// Deps carries everything the router mounts.
type Deps struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Gatherer serves /metrics. Usually the same registry the Metrics
	// collectors are registered on.
	Gatherer prometheus.Gatherer

	TokenValidator middleware.TokenValidator
	Revocations    middleware.RevocationChecker

	Auth          *auth.Handler
	Plans         *plan.Handler
	Registrations *registration.Handler
	Uploads       *upload.Handler
	Campaigns     *campaign.Handler
	Settings      *settings.Handler
	Queue         *mailqueue.Handler
	Health        *health.Checker

	AllowedOrigins []string
}

// NewRouter builds the full route tree.
func NewRouter(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Latency(deps.Metrics))
	r.Use(middleware.Timeout(requestTimeout))

	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	deps.Health.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(api chi.Router) {
		deps.Auth.Register(api)
		deps.Plans.RegisterPublic(api)
		deps.Registrations.RegisterPublic(api)
		deps.Uploads.RegisterPublic(api)

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(middleware.RequireAuth(deps.TokenValidator, deps.Revocations, deps.Logger))
			admin.Use(middleware.RequireAdmin(deps.Logger))

			deps.Plans.RegisterAdmin(admin)
			deps.Registrations.RegisterAdmin(admin)
			deps.Uploads.RegisterAdmin(admin)
			deps.Campaigns.RegisterAdmin(admin)
			deps.Settings.RegisterAdmin(admin)
			deps.Queue.RegisterAdmin(admin)

			admin.Get("/metrics/snapshot", func(w http.ResponseWriter, _ *http.Request) {
				httputil.WriteJSON(w, http.StatusOK, deps.Metrics.GetSnapshot())
			})
		})
	})

	return r
}
