package middleware_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/rentdesk/internal/auth"
	"github.com/gosuda/rentdesk/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// contextHandler captures context values set by middleware so tests can
// assert that the correct user and role were injected.
type contextHandler struct {
	userID uuid.UUID
	role   string
	called bool
}

func (h *contextHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.userID, _ = middleware.UserIDFromContext(r.Context())
	h.role, _ = middleware.RoleFromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}

func setUser(r *http.Request, userID uuid.UUID) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), userID, middleware.RoleMember))
}

// ===========================================================================
// 1. Context helpers
// ===========================================================================

func TestUserIDFromContext(t *testing.T) {
	t.Parallel()

	t.Run("present", func(t *testing.T) {
		t.Parallel()

		id := uuid.New()
		got, ok := middleware.UserIDFromContext(middleware.WithUser(context.Background(), id, "admin"))
		assert.True(t, ok)
		assert.Equal(t, id, got)
	})

	t.Run("absent", func(t *testing.T) {
		t.Parallel()

		_, ok := middleware.UserIDFromContext(context.Background())
		assert.False(t, ok)
	})

	t.Run("wrong type", func(t *testing.T) {
		t.Parallel()

		ctx := context.WithValue(context.Background(), middleware.ContextKeyUserID, "not-a-uuid")
		_, ok := middleware.UserIDFromContext(ctx)
		assert.False(t, ok)
	})
}

func TestRoleFromContext(t *testing.T) {
	t.Parallel()

	role, ok := middleware.RoleFromContext(middleware.WithUser(context.Background(), uuid.New(), "admin"))
	assert.True(t, ok)
	assert.Equal(t, "admin", role)

	_, ok = middleware.RoleFromContext(context.Background())
	assert.False(t, ok)
}

// ===========================================================================
// 2. RequireUser
// ===========================================================================

func TestRequireUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  func() *http.Request
		want int
	}{
		{
			name: "passes with user",
			req:  func() *http.Request { return setUser(httptest.NewRequest(http.MethodGet, "/", http.NoBody), uuid.New()) },
			want: http.StatusOK,
		},
		{
			name: "blocks when absent",
			req:  func() *http.Request { return httptest.NewRequest(http.MethodGet, "/", http.NoBody) },
			want: http.StatusForbidden,
		},
		{
			name: "blocks nil user",
			req:  func() *http.Request { return setUser(httptest.NewRequest(http.MethodGet, "/", http.NoBody), uuid.Nil) },
			want: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			middleware.RequireUser()(okHandler).ServeHTTP(rec, tt.req())
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

// ===========================================================================
// 3. Rate limiting
// ===========================================================================

func TestRateLimit_NoUserInContext_PassesThrough(t *testing.T) {
	t.Parallel()

	handler := middleware.RateLimit(t.Context(), 0.001, 1)(okHandler)
	for range 3 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimit_BurstExceeded_Returns429(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	// Very low rate (effectively zero refill during the test) with burst of 2.
	handler := middleware.RateLimit(t.Context(), 0.001, 2)(okHandler)

	for i := range 2 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, setUser(httptest.NewRequest(http.MethodGet, "/", http.NoBody), userID))
		require.Equalf(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, setUser(httptest.NewRequest(http.MethodGet, "/", http.NoBody), userID))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate limit exceeded")
}

func TestRateLimit_IndependentPerUser(t *testing.T) {
	t.Parallel()

	userA := uuid.New()
	userB := uuid.New()
	handler := middleware.RateLimit(t.Context(), 0.001, 1)(okHandler)

	recA := httptest.NewRecorder()
	handler.ServeHTTP(recA, setUser(httptest.NewRequest(http.MethodGet, "/", http.NoBody), userA))
	require.Equal(t, http.StatusOK, recA.Code)

	recA2 := httptest.NewRecorder()
	handler.ServeHTTP(recA2, setUser(httptest.NewRequest(http.MethodGet, "/", http.NoBody), userA))
	assert.Equal(t, http.StatusTooManyRequests, recA2.Code)

	recB := httptest.NewRecorder()
	handler.ServeHTTP(recB, setUser(httptest.NewRequest(http.MethodGet, "/", http.NoBody), userB))
	assert.Equal(t, http.StatusOK, recB.Code)
}

func TestRateLimitByIP(t *testing.T) {
	t.Parallel()

	handler := middleware.RateLimitByIP(t.Context(), 0.001, 1)(okHandler)

	fromIP := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", http.NoBody)
		req.RemoteAddr = ip
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, fromIP("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, fromIP("10.0.0.1"))
	assert.Equal(t, http.StatusOK, fromIP("10.0.0.2"))
}

// ===========================================================================
// 4. Auth middleware
// ===========================================================================

const testJWTSecret = "test-jwt-secret-for-middleware-tests"

func TestAuth_ValidToken_PopulatesContext(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	token, err := auth.IssueAccessToken(testJWTSecret, userID, "admin", 15*time.Minute)
	require.NoError(t, err)

	capture := &contextHandler{}
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	middleware.Auth(testJWTSecret)(capture).ServeHTTP(rec, req)

	require.True(t, capture.called, "inner handler must be called")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, capture.userID)
	assert.Equal(t, "admin", capture.role)
}

func TestAuth_Rejections(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	expired, err := auth.IssueAccessToken(testJWTSecret, userID, "member", -time.Second)
	require.NoError(t, err)
	wrongSecret, err := auth.IssueAccessToken("some-other-secret", userID, "member", time.Minute)
	require.NoError(t, err)
	refresh, err := auth.IssueRefreshToken(testJWTSecret, userID, "member", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "no credentials", header: ""},
		{name: "garbage token", header: "Bearer totally.invalid.token"},
		{name: "expired token", header: "Bearer " + expired},
		{name: "wrong secret", header: "Bearer " + wrongSecret},
		{name: "refresh token used as access token", header: "Bearer " + refresh},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			middleware.Auth(testJWTSecret)(okHandler).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "Unauthorized")
		})
	}
}

func TestAuth_BearerIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	token, err := auth.IssueAccessToken(testJWTSecret, uuid.New(), "member", time.Minute)
	require.NoError(t, err)

	for _, scheme := range []string{"Bearer ", "bearer ", "BEARER "} {
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		req.Header.Set("Authorization", scheme+token)
		rec := httptest.NewRecorder()

		middleware.Auth(testJWTSecret)(okHandler).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "scheme %q", scheme)
	}
}

func TestAuth_QueryTokenOnlyForWebsocketUpgrade(t *testing.T) {
	t.Parallel()

	token, err := auth.IssueAccessToken(testJWTSecret, uuid.New(), "member", time.Minute)
	require.NoError(t, err)

	upgrade := httptest.NewRequest(http.MethodGet, "/ws/collections/payments?access_token="+token, http.NoBody)
	upgrade.Header.Set("Upgrade", "websocket")
	rec := httptest.NewRecorder()
	middleware.Auth(testJWTSecret)(okHandler).ServeHTTP(rec, upgrade)
	assert.Equal(t, http.StatusOK, rec.Code)

	plain := httptest.NewRequest(http.MethodGet, "/api/v1/payments?access_token="+token, http.NoBody)
	rec = httptest.NewRecorder()
	middleware.Auth(testJWTSecret)(okHandler).ServeHTTP(rec, plain)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ===========================================================================
// 5. Request logging
// ===========================================================================

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	handler := chimw.RequestID(middleware.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/tenants", http.NoBody))

	out := buf.String()
	assert.Contains(t, out, `"method":"POST"`)
	assert.Contains(t, out, `"path":"/api/v1/tenants"`)
	assert.Contains(t, out, `"status":201`)
	assert.Contains(t, out, `"request_id"`)
	assert.Contains(t, out, `"level":"info"`)
}
