package settings

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treasurehunt/internal/settings/models"
	dErrors "treasurehunt/pkg/domain-errors"
	"treasurehunt/pkg/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService() *Service {
	return NewService(NewInMemoryStore(), discardLogger())
}

func TestTypedGettersFallBackToDefaults(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	assert.Equal(t, "fallback", svc.GetString(ctx, "missing", "fallback"))
	assert.Equal(t, 7, svc.GetInt(ctx, "missing", 7))
	assert.True(t, svc.GetBool(ctx, "missing", true))
	assert.Equal(t, 5*time.Minute, svc.GetDuration(ctx, "missing", 5*time.Minute))
}

func TestTypedGettersParseStoredValues(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Set(ctx, KeyMaxTeamSize, "8")
	require.NoError(t, err)
	_, err = svc.Set(ctx, KeyRegistrationOpen, "false")
	require.NoError(t, err)
	_, err = svc.Set(ctx, KeyConfirmationWindow, "72h")
	require.NoError(t, err)

	assert.Equal(t, 8, svc.GetInt(ctx, KeyMaxTeamSize, 4))
	assert.False(t, svc.GetBool(ctx, KeyRegistrationOpen, true))
	assert.Equal(t, 72*time.Hour, svc.GetDuration(ctx, KeyConfirmationWindow, time.Hour))
}

func TestTypedGettersFallBackOnGarbage(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Set(ctx, KeyMaxTeamSize, "a lot")
	require.NoError(t, err)

	assert.Equal(t, 4, svc.GetInt(ctx, KeyMaxTeamSize, 4))
	assert.True(t, svc.GetBool(ctx, KeyMaxTeamSize, true))
	assert.Equal(t, time.Hour, svc.GetDuration(ctx, KeyMaxTeamSize, time.Hour))
}

func TestSetValidatesKeys(t *testing.T) {
	svc := newTestService()

	for _, key := range []string{"", "UPPER", "x", "has space", "-leading"} {
		_, err := svc.Set(context.Background(), key, "v")
		assert.Equal(t, dErrors.CodeValidation, dErrors.CodeOf(err), "key %q", key)
	}
}

func TestDeleteRestoresDefault(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Set(ctx, KeyContactEmail, "crew@treasurehunt.example")
	require.NoError(t, err)
	assert.Equal(t, "crew@treasurehunt.example", svc.GetString(ctx, KeyContactEmail, "default@example.com"))

	require.NoError(t, svc.Delete(ctx, KeyContactEmail))
	assert.Equal(t, "default@example.com", svc.GetString(ctx, KeyContactEmail, "default@example.com"))

	err = svc.Delete(ctx, KeyContactEmail)
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func TestHandlerSettingsLifecycle(t *testing.T) {
	svc := newTestService()
	h := NewHandler(svc, discardLogger())
	router := chi.NewRouter()
	router.Route("/api/admin", func(admin chi.Router) {
		h.RegisterAdmin(admin)
	})

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPut, "/api/admin/settings/contact_email", setRequest{Value: "crew@example.com"}))
	testutil.AssertStatus(t, rr, http.StatusOK)
	setting := testutil.UnmarshalResponse[models.AppSetting](t, rr)
	assert.Equal(t, "contact_email", setting.Key)
	assert.Equal(t, "crew@example.com", setting.Value)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/admin/settings/contact_email"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/admin/settings"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodDelete, "/api/admin/settings/contact_email"))
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/admin/settings/contact_email"))
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}
