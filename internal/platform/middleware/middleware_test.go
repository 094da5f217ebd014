package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treasurehunt/internal/platform/metrics"
	dErrors "treasurehunt/pkg/domain-errors"
	"treasurehunt/pkg/platform/httputil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequestIDGeneratesAndEchoes(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, captured)
	assert.Equal(t, captured, rr.Header().Get("X-Request-ID"))
}

func TestRequestIDHonorsInbound(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "abc-123", captured)
}

func TestRecoveryConvertsPanics(t *testing.T) {
	handler := Recovery(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "INTERNAL_ERROR")
	assert.NotContains(t, rr.Body.String(), "boom")
}

func TestLatencyCountsRequestsAndErrors(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	handler := Latency(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, r, dErrors.New(dErrors.CodeNotFound, "plan gone"))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/plans/gone", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	snap := m.GetSnapshot()
	assert.Equal(t, int64(1), snap.Requests)
	assert.Equal(t, int64(1), snap.Errors, "handled errors reach the error counter")

	okHandler := Latency(m)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	okHandler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/plans", nil))

	snap = m.GetSnapshot()
	assert.Equal(t, int64(2), snap.Requests)
	assert.Equal(t, int64(1), snap.Errors, "successful requests leave it alone")
}

type stubValidator struct {
	claims *Claims
	err    error
}

func (s stubValidator) ValidateToken(string) (*Claims, error) { return s.claims, s.err }

type stubRevocation struct {
	revoked bool
	err     error
}

func (s stubRevocation) IsTokenRevoked(context.Context, string) (bool, error) {
	return s.revoked, s.err
}

func TestRequireAuth(t *testing.T) {
	protected := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("missing header", func(t *testing.T) {
		handler := RequireAuth(stubValidator{}, nil, discardLogger())(protected)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		handler := RequireAuth(stubValidator{err: errors.New("expired")}, nil, discardLogger())(protected)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bad")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("revoked token", func(t *testing.T) {
		validator := stubValidator{claims: &Claims{UserID: "u1", Role: RoleAdmin, JTI: "jti-1"}}
		handler := RequireAuth(validator, stubRevocation{revoked: true}, discardLogger())(protected)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid token passes claims through", func(t *testing.T) {
		validator := stubValidator{claims: &Claims{UserID: "u1", Role: RoleAdmin, JTI: "jti-1"}}
		var gotUser, gotRole string
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser = GetUserID(r.Context())
			gotRole = GetRole(r.Context())
		})
		handler := RequireAuth(validator, stubRevocation{}, discardLogger())(inner)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, "u1", gotUser)
		assert.Equal(t, RoleAdmin, gotRole)
	})
}

func TestRequireAdmin(t *testing.T) {
	protected := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireAdmin(discardLogger())(protected)

	t.Run("non-admin role rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithIdentity(req.Context(), "u1", "viewer"))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("admin role allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithIdentity(req.Context(), "u1", RoleAdmin))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}
