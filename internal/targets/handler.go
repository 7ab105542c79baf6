package targets

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storepulse/storepulse/internal/platform/httpx"
)

// Handler exposes target endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers target routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/stores/{store}/targets", h.get)
	r.Put("/stores/{store}/targets", h.put)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.Get(r.Context(), chi.URLParam(r, "store"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *Handler) put(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	saved, err := h.service.Save(r.Context(), chi.URLParam(r, "store"), req)
	if err != nil {
		h.logger.Error("save targets", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}
