package plan

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treasurehunt/internal/plan/models"
	dErrors "treasurehunt/pkg/domain-errors"
	"treasurehunt/pkg/testutil"
)

func newTestRouter(t *testing.T, counts map[string]int) (chi.Router, *Service) {
	t.Helper()
	svc, _ := newTestService(counts)
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

func TestHandlerPublicCatalog(t *testing.T) {
	router, svc := newTestRouter(t, nil)

	created, err := svc.Create(context.Background(), validPlan())
	require.NoError(t, err)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/plans"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[map[string]any](t, rr)
	assert.Equal(t, float64(1), (*resp)["count"])

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/plans/"+created.ID))
	testutil.AssertStatus(t, rr, http.StatusOK)
	single := testutil.UnmarshalResponse[planResponse](t, rr)
	assert.Equal(t, "$149.00", single.FormattedPrice)
	assert.Equal(t, "3 days", single.FormattedDuration)
	assert.True(t, single.Available)
}

func TestHandlerPublicGetUnknownPlan(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/plans/nope"))
	testutil.AssertStatus(t, rr, http.StatusNotFound)
	testutil.AssertErrorCode(t, rr, string(dErrors.CodeNotFound))
}

func TestHandlerAdminCreateValidates(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/admin/plans", map[string]any{
		"name": "",
	}))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	testutil.AssertErrorCode(t, rr, string(dErrors.CodeValidation))

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/admin/plans", validPlan()))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	created := testutil.UnmarshalResponse[models.Plan](t, rr)
	assert.NotEmpty(t, created.ID)
}

func TestHandlerAdminUpdateAndDelete(t *testing.T) {
	router, svc := newTestRouter(t, map[string]int{"busy": 2})
	ctx := context.Background()

	created, err := svc.Create(ctx, validPlan())
	require.NoError(t, err)

	update := validPlan()
	update.Name = "Desert Quest"
	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPut, "/api/admin/plans/"+created.ID, update))
	testutil.AssertStatus(t, rr, http.StatusOK)
	updated := testutil.UnmarshalResponse[models.Plan](t, rr)
	assert.Equal(t, "Desert Quest", updated.Name)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodDelete, "/api/admin/plans/"+created.ID))
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	busy := validPlan()
	busy.ID = "busy"
	_, err = svc.Create(ctx, busy)
	require.NoError(t, err)
	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodDelete, "/api/admin/plans/busy"))
	testutil.AssertStatus(t, rr, http.StatusConflict)
	testutil.AssertErrorCode(t, rr, string(dErrors.CodeConflict))
}

func TestHandlerAdminListFilters(t *testing.T) {
	router, svc := newTestRouter(t, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, validPlan())
	require.NoError(t, err)
	draft := validPlan()
	draft.Status = models.PlanDraft
	_, err = svc.Create(ctx, draft)
	require.NoError(t, err)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/admin/plans?status=DRAFT"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[map[string]any](t, rr)
	assert.Equal(t, float64(1), (*resp)["count"])

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/admin/plans?status=BOGUS"))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}
