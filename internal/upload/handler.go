package upload

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	dErrors "treasurehunt/pkg/domain-errors"
	"treasurehunt/pkg/platform/httputil"
)

// maxFormMemory caps how much of a multipart body chi buffers in memory
// before spilling to disk. The per-file size limits live in validation.
const maxFormMemory = 12 << 20

// Handler exposes document and plan image upload endpoints.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs the upload HTTP handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the visitor-facing document routes. Registrants
// upload documents against their registration id.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/registrations/{id}/documents", h.handleUploadDocument)
}

// RegisterAdmin mounts the admin upload routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/registrations/{id}/documents", h.handleListDocuments)
	r.Delete("/documents/{id}", h.handleDeleteDocument)
	r.Post("/plans/{id}/image", h.handleUploadPlanImage)
	r.Get("/plans/{id}/image", h.handleGetPlanImage)
	r.Delete("/plans/{id}/image", h.handleDeletePlanImage)
}

func (h *Handler) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	fileName, contentType, data, err := readUpload(r, "document")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	doc, err := h.service.UploadDocument(r.Context(), chi.URLParam(r, "id"), fileName, contentType, data)
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, doc)
}

func (h *Handler) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.ListDocuments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"documents": docs, "count": len(docs)})
}

func (h *Handler) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteDocument(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUploadPlanImage(w http.ResponseWriter, r *http.Request) {
	fileName, contentType, data, err := readUpload(r, "image")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	img, err := h.service.UploadPlanImage(r.Context(), chi.URLParam(r, "id"), fileName, contentType, data)
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, img)
}

func (h *Handler) handleGetPlanImage(w http.ResponseWriter, r *http.Request) {
	img, err := h.service.GetPlanImage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, img)
}

func (h *Handler) handleDeletePlanImage(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePlanImage(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteAndLogError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// readUpload pulls the named multipart file out of the request. The declared
// content type comes from the part header; validation re-checks it against
// the allow-lists.
func readUpload(r *http.Request, field string) (fileName, contentType string, data []byte, err error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		return "", "", nil, dErrors.Wrap(err, dErrors.CodeValidation, "parse multipart form")
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", "", nil, dErrors.Newf(dErrors.CodeValidation, "multipart field %q is required", field)
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		return "", "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "read upload")
	}
	return header.Filename, header.Header.Get("Content-Type"), data, nil
}
