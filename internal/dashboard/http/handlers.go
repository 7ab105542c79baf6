package dashboardhttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/storepulse/storepulse/internal/dashboard"
	"github.com/storepulse/storepulse/internal/dashboard/export"
	"github.com/storepulse/storepulse/internal/platform/httpx"
)

const requestTimeout = 5 * time.Second

// SummaryService is the dashboard contract used by the handler.
type SummaryService interface {
	Summary(ctx context.Context, filter dashboard.Filter) (dashboard.Summary, error)
	Today() time.Time
}

// Handler serves KPI summaries and their exports.
type Handler struct {
	logger  *slog.Logger
	service SummaryService
	bufPool sync.Pool
	timeout time.Duration
}

// NewHandler constructs the dashboard HTTP handler.
func NewHandler(logger *slog.Logger, service SummaryService) *Handler {
	h := &Handler{logger: logger, service: service, timeout: requestTimeout}
	h.bufPool.New = func() any { return new(bytes.Buffer) }
	return h
}

// WithTimeout overrides the per-request computation budget.
func (h *Handler) WithTimeout(d time.Duration) {
	if d > 0 {
		h.timeout = d
	}
}

func (h *Handler) handleKPI(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "csv", "text/csv; charset=utf-8", export.WriteKPICSV)
}

func (h *Handler) handleXLSX(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", export.WriteKPIXLSX)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request, ext, contentType string, write func(io.Writer, dashboard.Summary) error) {
	summary, ok := h.load(w, r)
	if !ok {
		return
	}

	buf := h.bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.bufPool.Put(buf)
	}()

	if err := write(buf, summary); err != nil {
		h.serverError(w, "write "+ext, err)
		return
	}

	filename := fmt.Sprintf("kpi-%s-%s-%s.%s",
		summary.Filter.StoreID,
		summary.Filter.From.Format(dashboard.DateLayout),
		summary.Filter.To.Format(dashboard.DateLayout),
		ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn("stream export", slog.String("format", ext), slog.Any("error", err))
	}
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (dashboard.Summary, bool) {
	filter, err := h.parseFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return dashboard.Summary{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	summary, err := h.service.Summary(ctx, filter)
	switch {
	case err == nil:
		return summary, true
	case errors.Is(err, httpx.ErrValidation):
		httpx.RespondError(w, err)
	case errors.Is(err, context.DeadlineExceeded):
		httpx.Problem(w, http.StatusGatewayTimeout, "Timeout", "kpi computation took too long")
	default:
		h.serverError(w, "load summary", err)
	}
	return dashboard.Summary{}, false
}

// parseFilter reads store, from, to, compare_from, compare_to and
// prorate_labor. Without from and to the window is month to date.
func (h *Handler) parseFilter(r *http.Request) (dashboard.Filter, error) {
	q := r.URL.Query()
	store := q.Get("store")
	if store == "" {
		return dashboard.Filter{}, fmt.Errorf("%w: store is required", dashboard.ErrInvalidRange)
	}

	var filter dashboard.Filter
	if q.Get("from") == "" && q.Get("to") == "" {
		filter = dashboard.MonthToDate(store, h.service.Today())
	} else {
		from, err := parseDay(q.Get("from"), "from")
		if err != nil {
			return dashboard.Filter{}, err
		}
		to, err := parseDay(q.Get("to"), "to")
		if err != nil {
			return dashboard.Filter{}, err
		}
		filter = dashboard.Filter{StoreID: store, From: from, To: to}
	}

	if raw := q.Get("compare_from"); raw != "" {
		t, err := parseDay(raw, "compare_from")
		if err != nil {
			return dashboard.Filter{}, err
		}
		filter.CompareFrom = &t
	}
	if raw := q.Get("compare_to"); raw != "" {
		t, err := parseDay(raw, "compare_to")
		if err != nil {
			return dashboard.Filter{}, err
		}
		filter.CompareTo = &t
	}
	if raw := q.Get("prorate_labor"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return dashboard.Filter{}, fmt.Errorf("%w: prorate_labor must be a boolean", dashboard.ErrInvalidRange)
		}
		filter.ProrateLabor = v
	}
	return filter, nil
}

func parseDay(raw, name string) (time.Time, error) {
	t, err := time.Parse(dashboard.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must look like 2006-01-02", dashboard.ErrInvalidRange, name)
	}
	return t, nil
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.logger.Error("dashboard request failed", slog.String("op", op), slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
