package billing

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/artfolio/artfolio/pkg/logger"
	"github.com/artfolio/artfolio/pkg/session"
	"github.com/artfolio/artfolio/pkg/validator"
)

// Handler exposes the billing module over HTTP. Every route is admin-only.
type Handler struct {
	svc      *Service
	sessions *session.Manager
	logger   *slog.Logger
}

// NewHandler wires the HTTP surface of the billing module.
func NewHandler(svc *Service, sessions *session.Manager, log *slog.Logger) *Handler {
	return &Handler{svc: svc, sessions: sessions, logger: log}
}

// Handle returns the router to mount under /admin/payments.
func (h *Handler) Handle() http.Handler {
	r := chi.NewRouter()
	r.Use(session.Middleware(h.sessions))
	r.Use(session.RequireRole(session.RoleAdmin))
	r.Get("/", h.report)
	return r
}

const dateLayout = "2006-01-02"

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	from, err := parseDateParam(r, "startDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "startDate must be a YYYY-MM-DD date")
		return
	}
	to, err := parseDateParam(r, "endDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "endDate must be a YYYY-MM-DD date")
		return
	}
	if to != nil {
		// Make the end bound inclusive of the whole day.
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}

	report, err := h.svc.MonthlyReport(r.Context(), from, to)
	if err != nil {
		var verrs validator.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			writeError(w, http.StatusBadRequest, verrs.Error())
		case errors.Is(err, ErrNoTransactions):
			writeReport(w, http.StatusOK, map[string]any{
				"message": "no transactions found for the selected period",
				"data":    map[string]any{},
			})
		default:
			h.logger.Error("failed to build payment report", logger.Component("billing"), logger.Error(err))
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeReport(w, http.StatusOK, report)
}

func parseDateParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func writeReport(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeReport(w, status, map[string]string{"message": message})
}
