package baseline

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/storepulse/storepulse/internal/platform/httpx"
)

// Handler exposes baseline endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers baseline routes under /stores/{store}.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/stores/{store}/baseline", h.getBaseline)
	r.Put("/stores/{store}/baseline", h.putBaseline)
	r.Get("/stores/{store}/monthly-expenses/{month}", h.getMonthly)
	r.Put("/stores/{store}/monthly-expenses/{month}", h.putMonthly)
}

func (h *Handler) getBaseline(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Baseline(r.Context(), chi.URLParam(r, "store"))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) putBaseline(w http.ResponseWriter, r *http.Request) {
	var req BaselineRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	saved, err := h.service.SaveBaseline(r.Context(), chi.URLParam(r, "store"), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}

func (h *Handler) getMonthly(w http.ResponseWriter, r *http.Request) {
	month, err := time.Parse(MonthLayout, chi.URLParam(r, "month"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Month", "month must look like 2006-01")
		return
	}
	m, err := h.service.Monthly(r.Context(), chi.URLParam(r, "store"), month)
	if err != nil {
		h.fail(w, err)
		return
	}
	if m == nil {
		httpx.RespondError(w, ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *Handler) putMonthly(w http.ResponseWriter, r *http.Request) {
	var req MonthlyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	saved, err := h.service.SaveMonthly(r.Context(), chi.URLParam(r, "store"), chi.URLParam(r, "month"), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	h.logger.Error("baseline request failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}
