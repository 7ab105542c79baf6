package reports

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/storepulse/storepulse/internal/platform/httpx"
)

// Handler exposes report endpoints.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	submitLimit int
}

// NewHandler builds a Handler. submitPerMinute caps submissions per client IP;
// zero disables the limit.
func NewHandler(logger *slog.Logger, service *Service, submitPerMinute int) *Handler {
	return &Handler{logger: logger, service: service, submitLimit: submitPerMinute}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports", h.list)
	r.Group(func(r chi.Router) {
		if h.submitLimit > 0 {
			r.Use(httprate.LimitByIP(h.submitLimit, time.Minute))
		}
		r.Post("/reports", h.submit)
		r.Post("/reports/batch", h.submitBatch)
	})
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	rep, err := h.service.Submit(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rep)
}

func (h *Handler) submitBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	reps, err := h.service.SubmitBatch(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"reports": reps})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{StoreID: q.Get("store")}

	var err error
	if filter.From, err = parseDate(q.Get("from")); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Query", "from must look like 2006-01-02")
		return
	}
	if filter.To, err = parseDate(q.Get("to")); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Query", "to must look like 2006-01-02")
		return
	}
	if raw := q.Get("limit"); raw != "" {
		filter.Limit, err = strconv.Atoi(raw)
		if err != nil || filter.Limit < 0 {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Query", "limit must be a non-negative integer")
			return
		}
	}

	reps, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.fail(w, err)
		return
	}
	if reps == nil {
		reps = []Report{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"reports": reps})
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	h.logger.Warn("report request failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(DateLayout, raw)
}
