package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/storepulse/storepulse/internal/baseline"
	dashboardhttp "github.com/storepulse/storepulse/internal/dashboard/http"
	"github.com/storepulse/storepulse/internal/observability"
	"github.com/storepulse/storepulse/internal/platform/httpx"
	"github.com/storepulse/storepulse/internal/reports"
	"github.com/storepulse/storepulse/internal/targets"
	"github.com/storepulse/storepulse/jobs"
)

// Pinger checks a backing service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	ReportsHandler   *reports.Handler
	BaselineHandler  *baseline.Handler
	TargetsHandler   *targets.Handler
	DashboardHandler *dashboardhttp.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
	// Health maps a dependency name to its check.
	Health map[string]Pinger
}

// NewRouter constructs the chi.Router with StorePulse defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", healthHandler(params.Health))

	r.Route("/api/v1", func(r chi.Router) {
		if params.ReportsHandler != nil {
			params.ReportsHandler.MountRoutes(r)
		}
		if params.BaselineHandler != nil {
			params.BaselineHandler.MountRoutes(r)
		}
		if params.TargetsHandler != nil {
			params.TargetsHandler.MountRoutes(r)
		}
		if params.DashboardHandler != nil {
			params.DashboardHandler.MountRoutes(r)
		}
	})
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	return r
}

func healthHandler(checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check.Ping(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[name] = err.Error()
				continue
			}
			body[name] = "ok"
		}
		httpx.JSON(w, status, body)
	}
}
