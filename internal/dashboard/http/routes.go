// Package dashboardhttp exposes the KPI dashboard over HTTP.
package dashboardhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// exportsPerMinute caps file exports per client.
const exportsPerMinute = 10

// MountRoutes registers KPI endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(exportsPerMinute, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/kpi", h.handleKPI)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/kpi/export.csv", h.handleCSV)
		gr.Get("/kpi/export.xlsx", h.handleXLSX)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
