package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/rentdesk/internal/auth"
	"github.com/gosuda/rentdesk/internal/collection"
	"github.com/gosuda/rentdesk/internal/config"
	"github.com/gosuda/rentdesk/internal/domain"
	"github.com/gosuda/rentdesk/internal/metrics"
	"github.com/gosuda/rentdesk/internal/server"
)

const testSecret = "test-secret-that-is-at-least-32-bytes-long"

// emptyRepo serves an empty collection for every owner.
type emptyRepo[T any] struct{}

func (emptyRepo[T]) Create(context.Context, *T) error { return nil }
func (emptyRepo[T]) GetByID(context.Context, uuid.UUID, uuid.UUID) (*T, error) {
	return nil, domain.ErrNotFound
}
func (emptyRepo[T]) Update(context.Context, *T) error { return domain.ErrNotFound }
func (emptyRepo[T]) Delete(context.Context, uuid.UUID, uuid.UUID) (*T, error) {
	return nil, domain.ErrNotFound
}
func (emptyRepo[T]) List(context.Context, uuid.UUID, domain.ListParams) (*domain.Page[T], error) {
	return &domain.Page[T]{}, nil
}

type emptyPayments struct{ emptyRepo[domain.Payment] }

func (emptyPayments) ListByTenant(context.Context, uuid.UUID, uuid.UUID) ([]*domain.Payment, error) {
	return nil, nil
}

type stubStore struct {
	pingErr error
}

func (stubStore) Apartments() domain.ApartmentRepository    { return emptyRepo[domain.Apartment]{} }
func (stubStore) Tenants() domain.TenantRepository          { return emptyRepo[domain.Tenant]{} }
func (stubStore) Payments() domain.PaymentRepository        { return emptyPayments{} }
func (stubStore) Expenses() domain.ExpenseRepository        { return emptyRepo[domain.Expense]{} }
func (stubStore) Maintenance() domain.MaintenanceRepository { return emptyRepo[domain.MaintenanceRequest]{} }
func (s stubStore) Ping(context.Context) error              { return s.pingErr }

type nopBroker struct{}

func (nopBroker) Publish(context.Context, string, []byte) error { return nil }
func (nopBroker) Subscribe(context.Context, string) (<-chan []byte, func(), error) {
	return make(chan []byte), func() {}, nil
}

type nopAuth struct{}

func (nopAuth) Register(context.Context, string, string, string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}
func (nopAuth) Login(context.Context, string, string) (string, string, error) {
	return "", "", auth.ErrInvalidCredentials
}
func (nopAuth) RefreshToken(context.Context, string) (string, error) {
	return "", auth.ErrInvalidToken
}

func newTestServer(t *testing.T, store stubStore) http.Handler {
	t.Helper()

	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: testSecret, AccessTTL: time.Minute, RefreshTTL: time.Hour},
		Server: config.ServerConfig{
			Addr:        ":0",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		RateLimit: config.RateLimitConfig{UserRPS: 100, UserBurst: 100, IPRPS: 100, IPBurst: 100},
	}
	m := metrics.New(prometheus.NewRegistry())

	return server.New(t.Context(), cfg, store, nopBroker{}, nopAuth{}, m).Handler()
}

func accessToken(t *testing.T, role string) string {
	t.Helper()

	tok, err := auth.IssueAccessToken(testSecret, uuid.New(), role, time.Minute)
	require.NoError(t, err)
	return tok
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()

	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, stubStore{})
	rec := do(h, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadyz(t *testing.T) {
	t.Parallel()

	t.Run("ready", func(t *testing.T) {
		t.Parallel()

		rec := do(newTestServer(t, stubStore{}), httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("database_down", func(t *testing.T) {
		t.Parallel()

		h := newTestServer(t, stubStore{pingErr: errors.New("connection refused")})
		rec := do(h, httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestAPI_RequiresToken(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, stubStore{})
	rec := do(h, httptest.NewRequest(http.MethodGet, "/api/v1/tenants", http.NoBody))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_ListWithToken(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, stubStore{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tenants", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+accessToken(t, "member"))

	rec := do(h, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body collection.Collection[domain.Tenant]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Edges)
	assert.Zero(t, body.TotalCount)
}

func TestAPI_RejectsUnknownRole(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, stubStore{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+accessToken(t, "viewer"))

	assert.Equal(t, http.StatusForbidden, do(h, req).Code)
}

func TestAuthRoutes_AreUnauthenticated(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, stubStore{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh",
		jsonBody(t, map[string]string{"refresh_token": "garbage"}))
	req.Header.Set("Content-Type", "application/json")

	// The service rejects the token; the auth middleware is not in the way.
	assert.Equal(t, http.StatusUnauthorized, do(h, req).Code)
}

func TestWS_RequiresToken(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, stubStore{})
	rec := do(h, httptest.NewRequest(http.MethodGet, "/ws/collections/tenants", http.NoBody))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMetrics_CountsRequests(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, stubStore{})
	do(h, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))

	rec := do(h, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `rentdesk_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestCORS_Preflight(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, stubStore{})
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/tenants", http.NoBody)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	rec := do(h, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAPI_ReportMounted(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, stubStore{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports?search=rent", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+accessToken(t, "member"))

	rec := do(h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Rows []json.RawMessage `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotNil(t, body.Rows)
	assert.Empty(t, body.Rows)
}
