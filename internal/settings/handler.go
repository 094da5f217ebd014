package settings

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"treasurehunt/pkg/platform/httputil"
)

// Handler exposes the admin settings surface.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs the settings HTTP handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterAdmin mounts the settings routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/settings", h.handleList)
	r.Get("/settings/{key}", h.handleGet)
	r.Put("/settings/{key}", h.handleSet)
	r.Delete("/settings/{key}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"settings": out, "count": len(out)})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	setting, err := h.service.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, setting)
}

type setRequest struct {
	Value string `json:"value"`
}

func (h *Handler) handleSet(w http.ResponseWriter, r *http.Request) {
	var req setRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	setting, err := h.service.Set(r.Context(), chi.URLParam(r, "key"), req.Value)
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, setting)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "key")); err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
