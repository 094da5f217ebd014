package campaign

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"treasurehunt/internal/campaign/models"
	dErrors "treasurehunt/pkg/domain-errors"
	"treasurehunt/pkg/testutil"
)

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()
	svc, _ := newTestService(&fakeQueue{})
	h := NewHandler(svc, discardLogger())

	r := chi.NewRouter()
	r.Route("/api/admin", func(admin chi.Router) {
		h.RegisterAdmin(admin)
	})
	return r
}

func TestHandlerCampaignLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/admin/campaigns", validCampaign()))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	created := testutil.UnmarshalResponse[models.Campaign](t, rr)
	assert.Equal(t, models.CampaignDraft, created.Status)

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/admin/campaigns/"+created.ID+"/schedule",
		scheduleRequest{ScheduledDate: time.Now().Add(24 * time.Hour)}))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPost, "/api/admin/campaigns/"+created.ID+"/send"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	sending := testutil.UnmarshalResponse[models.Campaign](t, rr)
	assert.Equal(t, models.CampaignSending, sending.Status)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPost, "/api/admin/campaigns/"+created.ID+"/pause"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPost, "/api/admin/campaigns/"+created.ID+"/cancel"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodDelete, "/api/admin/campaigns/"+created.ID))
	testutil.AssertStatus(t, rr, http.StatusNoContent)
}

func TestHandlerCreateValidationEnvelope(t *testing.T) {
	router := newTestRouter(t)

	bad := validCampaign()
	bad.Subject = ""
	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/admin/campaigns", bad))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	testutil.AssertErrorCode(t, rr, string(dErrors.CodeValidation))
}

func TestHandlerListFiltersByStatus(t *testing.T) {
	router := newTestRouter(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/admin/campaigns", validCampaign()))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/admin/campaigns?status=DRAFT"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/admin/campaigns?status=BOGUS"))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestHandlerUnknownCampaign(t *testing.T) {
	router := newTestRouter(t)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/admin/campaigns/nope"))
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}
