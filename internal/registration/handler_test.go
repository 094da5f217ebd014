package registration

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treasurehunt/internal/registration/models"
	dErrors "treasurehunt/pkg/domain-errors"
	"treasurehunt/pkg/testutil"
)

func newTestRouter(t *testing.T) (chi.Router, *Service) {
	t.Helper()
	svc, _, _ := newTestService(activePlan(10))
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

func TestHandlerRegister(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/registrations", validRegistration()))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	created := testutil.UnmarshalResponse[models.Registration](t, rr)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.StatusPending, created.Status)
}

func TestHandlerRegisterValidationEnvelope(t *testing.T) {
	router, _ := newTestRouter(t)

	bad := validRegistration()
	bad.Email = "nope"
	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/registrations", bad))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	testutil.AssertErrorCode(t, rr, string(dErrors.CodeValidation))
}

func TestHandlerAdminLifecycle(t *testing.T) {
	router, svc := newTestRouter(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/admin/registrations"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	list := testutil.UnmarshalResponse[map[string]any](t, rr)
	assert.Equal(t, float64(1), (*list)["count"])

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPost, "/api/admin/registrations/"+created.ID+"/confirm"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	confirmed := testutil.UnmarshalResponse[models.Registration](t, rr)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPost, "/api/admin/registrations/"+created.ID+"/cancel"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodDelete, "/api/admin/registrations/"+created.ID))
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/admin/registrations/"+created.ID))
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestHandlerAdminListFilterValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/admin/registrations?status=BOGUS"))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	testutil.AssertErrorCode(t, rr, string(dErrors.CodeValidation))
}
