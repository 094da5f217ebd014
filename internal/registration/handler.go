package registration

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"treasurehunt/internal/registration/models"
	"treasurehunt/pkg/platform/httputil"
)

// Handler exposes the public registration endpoint and the admin
// management surface.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs the registration HTTP handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the visitor-facing route.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/registrations", h.handleRegister)
}

// RegisterAdmin mounts the management routes. The router wraps them with
// RequireAuth and RequireAdmin.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/registrations", h.handleList)
	r.Get("/registrations/{id}", h.handleGet)
	r.Post("/registrations/{id}/confirm", h.handleConfirm)
	r.Post("/registrations/{id}/cancel", h.handleCancel)
	r.Delete("/registrations/{id}", h.handleDelete)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if err := httputil.DecodeJSON(r, &reg); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	created, err := h.service.Register(r.Context(), &reg)
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page, limit := httputil.PageParams(r)
	q := r.URL.Query()
	regs, err := h.service.List(r.Context(), q.Get("status"), q.Get("plan_id"), page, limit)
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"registrations": regs, "count": len(regs)})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reg, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reg)
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	reg, err := h.service.Confirm(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reg)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	reg, err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reg)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
