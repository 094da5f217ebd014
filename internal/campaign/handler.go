package campaign

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"treasurehunt/internal/campaign/models"
	"treasurehunt/pkg/platform/httputil"
)

// Handler exposes the admin campaign surface.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs the campaign HTTP handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterAdmin mounts the campaign routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/campaigns", h.handleList)
	r.Post("/campaigns", h.handleCreate)
	r.Get("/campaigns/{id}", h.handleGet)
	r.Put("/campaigns/{id}", h.handleUpdate)
	r.Delete("/campaigns/{id}", h.handleDelete)
	r.Post("/campaigns/{id}/schedule", h.handleSchedule)
	r.Post("/campaigns/{id}/send", h.handleSend)
	r.Post("/campaigns/{id}/pause", h.handlePause)
	r.Post("/campaigns/{id}/cancel", h.handleCancel)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page, limit := httputil.PageParams(r)
	campaigns, err := h.service.List(r.Context(), r.URL.Query().Get("status"), page, limit)
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"campaigns": campaigns, "count": len(campaigns)})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var c models.Campaign
	if err := httputil.DecodeJSON(r, &c); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	created, err := h.service.Create(r.Context(), &c)
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var c models.Campaign
	if err := httputil.DecodeJSON(r, &c); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	c.ID = chi.URLParam(r, "id")
	updated, err := h.service.Update(r.Context(), &c)
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

type scheduleRequest struct {
	ScheduledDate time.Time `json:"scheduled_date"`
}

func (h *Handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	c, err := h.service.Schedule(r.Context(), chi.URLParam(r, "id"), req.ScheduledDate)
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Send(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Pause(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}
