package upload

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treasurehunt/internal/upload/models"
	dErrors "treasurehunt/pkg/domain-errors"
	"treasurehunt/pkg/testutil"
)

func newTestRouter(t *testing.T) (chi.Router, *Service) {
	t.Helper()
	svc, _, _ := newTestService([]string{"plan-1"}, []string{"reg-1"})
	h := NewHandler(svc, discardLogger())

	r := chi.NewRouter()
	r.Route("/api", func(api chi.Router) {
		h.RegisterPublic(api)
	})
	r.Route("/api/admin", func(admin chi.Router) {
		h.RegisterAdmin(admin)
	})
	return r, svc
}

func newUploadRequest(t *testing.T, path, field, fileName, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, path, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHandlerUploadDocument(t *testing.T) {
	router, _ := newTestRouter(t)

	req := newUploadRequest(t, "/api/registrations/reg-1/documents", "document", "waiver.pdf", "application/pdf", []byte("pdf bytes"))
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	doc := testutil.UnmarshalResponse[models.UploadedDocument](t, rr)
	assert.Equal(t, "waiver.pdf", doc.FileName)
	assert.Equal(t, "reg-1", doc.RegistrationID)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/admin/registrations/reg-1/documents"))
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestHandlerUploadDocumentRejectsType(t *testing.T) {
	router, _ := newTestRouter(t)

	req := newUploadRequest(t, "/api/registrations/reg-1/documents", "document", "tool.exe", "application/octet-stream", []byte("x"))
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	testutil.AssertErrorCode(t, rr, string(dErrors.CodeValidation))
}

func TestHandlerUploadDocumentMissingField(t *testing.T) {
	router, _ := newTestRouter(t)

	req := newUploadRequest(t, "/api/registrations/reg-1/documents", "wrong_field", "waiver.pdf", "application/pdf", []byte("x"))
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestHandlerPlanImageLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)

	req := newUploadRequest(t, "/api/admin/plans/plan-1/image", "image", "hero.jpg", "image/jpeg", []byte("jpg"))
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	img := testutil.UnmarshalResponse[models.UploadedImage](t, rr)
	assert.Equal(t, "plan-1", img.PlanID)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/admin/plans/plan-1/image"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodDelete, "/api/admin/plans/plan-1/image"))
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/admin/plans/plan-1/image"))
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestHandlerUploadImageUnknownPlan(t *testing.T) {
	router, _ := newTestRouter(t)

	req := newUploadRequest(t, "/api/admin/plans/nope/image", "image", "hero.jpg", "image/jpeg", []byte("jpg"))
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}
