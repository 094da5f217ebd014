package mailqueue

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	dErrors "treasurehunt/pkg/domain-errors"
	"treasurehunt/pkg/platform/httputil"
)

// Handler exposes the admin queue surface: inspection, per-entry cancel,
// and the manual retry and cleanup triggers.
type Handler struct {
	service *Service
	logger  *slog.Logger

	// retention mirrors the dispatcher's cleanup window so a manual
	// cleanup behaves like the scheduled one.
	retention time.Duration
}

// NewHandler constructs the queue HTTP handler.
func NewHandler(service *Service, retention time.Duration, logger *slog.Logger) *Handler {
	return &Handler{service: service, retention: retention, logger: logger}
}

// RegisterAdmin mounts the queue routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/queue", h.handleList)
	r.Get("/queue/{id}", h.handleGet)
	r.Post("/queue/{id}/cancel", h.handleCancel)
	r.Post("/queue/retry", h.handleRetry)
	r.Post("/queue/cleanup", h.handleCleanup)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page, limit := httputil.PageParams(r)
	entries, err := h.service.List(r.Context(), r.URL.Query().Get("status"), page, limit)
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"entries": entries, "count": len(entries)})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Cancel(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRetry(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.RetryFailed(r.Context())
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"requeued": count})
}

func (h *Handler) handleCleanup(w http.ResponseWriter, r *http.Request) {
	retention := h.retention
	if raw := r.URL.Query().Get("retention"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			httputil.WriteError(w, r, dErrors.Newf(dErrors.CodeValidation, "invalid retention %q", raw))
			return
		}
		retention = parsed
	}
	count, err := h.service.Cleanup(r.Context(), retention)
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"deleted": count})
}
