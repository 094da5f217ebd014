package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	dErrors "treasurehunt/pkg/domain-errors"
	"treasurehunt/pkg/platform/httputil"
)

// Handler exposes login and logout.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs the auth HTTP handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the auth routes. Login is public; logout needs the token
// it revokes, which it reads from the Authorization header itself.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/logout", h.handleLogout)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, session)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		httputil.WriteError(w, r, dErrors.New(dErrors.CodeSecurity, "missing bearer token"))
		return
	}
	if err := h.service.Logout(r.Context(), token); err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
