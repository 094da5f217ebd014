package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"treasurehunt/pkg/testutil"
)

func newRouter(checks ...Check) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewChecker("test", logger, checks...)
	r := chi.NewRouter()
	c.Register(r)
	return r
}

func TestLiveAlwaysOK(t *testing.T) {
	router := newRouter(Check{Name: "db", Probe: func(context.Context) error {
		return errors.New("down")
	}})

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health/live"))
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestReadyReflectsChecks(t *testing.T) {
	healthy := newRouter(Check{Name: "db", Probe: func(context.Context) error { return nil }})
	rr := testutil.DoRequest(healthy, testutil.NewRequest(t, http.MethodGet, "/health/ready"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	broken := newRouter(
		Check{Name: "db", Probe: func(context.Context) error { return nil }},
		Check{Name: "redis", Probe: func(context.Context) error { return errors.New("connection refused") }},
	)
	rr = testutil.DoRequest(broken, testutil.NewRequest(t, http.MethodGet, "/health/ready"))
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
}

func TestHealthReportsPerCheckStatus(t *testing.T) {
	router := newRouter(
		Check{Name: "db", Probe: func(context.Context) error { return nil }},
		Check{Name: "dispatcher", Probe: func(context.Context) error { return errors.New("not running") }},
	)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	body := string(testutil.ReadBody(t, rr))
	assert.Contains(t, body, `"degraded"`)
	assert.Contains(t, body, `"not running"`)
}
