package plan

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"treasurehunt/internal/plan/models"
	"treasurehunt/pkg/platform/httputil"
)

// Handler exposes the plan catalog and the admin CRUD surface.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs the plan HTTP handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the visitor-facing catalog routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/plans", h.handleListPublic)
	r.Get("/plans/{id}", h.handleGetPublic)
}

// RegisterAdmin mounts the CRUD routes. The router wraps them with
// RequireAuth and RequireAdmin.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/plans", h.handleList)
	r.Post("/plans", h.handleCreate)
	r.Get("/plans/{id}", h.handleGet)
	r.Put("/plans/{id}", h.handleUpdate)
	r.Delete("/plans/{id}", h.handleDelete)
}

func (h *Handler) handleListPublic(w http.ResponseWriter, r *http.Request) {
	page, limit := httputil.PageParams(r)
	plans, err := h.service.ListPublic(r.Context(), page, limit)
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse(plans))
}

func (h *Handler) handleGetPublic(w http.ResponseWriter, r *http.Request) {
	wa, err := h.service.GetPublic(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(wa))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page, limit := httputil.PageParams(r)
	plans, err := h.service.List(r.Context(), r.URL.Query().Get("status"), page, limit)
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"plans": plans, "count": len(plans)})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var p models.Plan
	if err := httputil.DecodeJSON(r, &p); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	created, err := h.service.Create(r.Context(), &p)
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var p models.Plan
	if err := httputil.DecodeJSON(r, &p); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	p.ID = chi.URLParam(r, "id")
	updated, err := h.service.Update(r.Context(), &p)
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// planResponse is the public catalog shape: the plan plus the premformatted
// fields templates used to render server-side.
type planResponse struct {
	*models.Plan
	FormattedPrice    string `json:"formatted_price"`
	FormattedDuration string `json:"formatted_duration"`
	RegisteredCount   int    `json:"registered_count"`
	SpotsLeft         int    `json:"spots_left"`
	Available         bool   `json:"available"`
}

func toResponse(wa *WithAvailability) *planResponse {
	return &planResponse{
		Plan:              wa.Plan,
		FormattedPrice:    wa.Plan.FormattedPrice(),
		FormattedDuration: wa.Plan.FormattedDuration(),
		RegisteredCount:   wa.RegisteredCount,
		SpotsLeft:         wa.SpotsLeft,
		Available:         wa.Available,
	}
}

func listResponse(plans []*WithAvailability) map[string]any {
	out := make([]*planResponse, 0, len(plans))
	for _, wa := range plans {
		out = append(out, toResponse(wa))
	}
	return map[string]any{"plans": out, "count": len(out)}
}
