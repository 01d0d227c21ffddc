package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/token_ledger/internal/apperrors"
	"github.com/SscSPs/token_ledger/internal/core/domain"
	"github.com/SscSPs/token_ledger/internal/middleware"
	"github.com/SscSPs/token_ledger/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

const (
	testSecret = "test-secret-key-that-is-long-enough"
	testIssuer = "test"
)

type MockKeyValidator struct {
	mock.Mock
}

func (m *MockKeyValidator) ValidateKey(ctx context.Context, apiKey string) (domain.AccountID, error) {
	args := m.Called(ctx, apiKey)
	return args.Get(0).(domain.AccountID), args.Error(1)
}

type fakeTracker struct {
	events []string
	ids    []string
}

func (f *fakeTracker) IsInitialized() bool { return true }

func (f *fakeTracker) Track(distinctID, event string, properties map[string]any) {
	f.ids = append(f.ids, distinctID)
	f.events = append(f.events, event)
}

// whoami echoes the authenticated caller.
func whoami(c *gin.Context) {
	account, ok := middleware.GetAccountFromContext(c)
	if !ok {
		c.String(http.StatusTeapot, "anonymous")
		return
	}
	c.String(http.StatusOK, string(account))
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/api/v1/whoami", whoami)
	r.GET("/api/v1/items/:id", whoami)
	return r
}

func serve(r *gin.Engine, header, value string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/whoami", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(middleware.AuthMiddleware(testSecret, testIssuer))

	valid, _, err := utils.GenerateJWT("alice", testSecret, time.Hour, "test")
	require.NoError(t, err)
	expired, _, err := utils.GenerateJWT("alice", testSecret, -time.Minute, "test")
	require.NoError(t, err)
	foreign, _, err := utils.GenerateJWT("alice", "some-other-secret", time.Hour, "test")
	require.NoError(t, err)
	badSubject, _, err := utils.GenerateJWT("Not An Account", testSecret, time.Hour, "test")
	require.NoError(t, err)
	otherIssuer, _, err := utils.GenerateJWT("alice", testSecret, time.Hour, "billing-service")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, "alice"},
		{"missing header", "", http.StatusUnauthorized, "Authorization header required"},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized, "Bearer {token}"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "Token has expired"},
		{"wrong secret", "Bearer " + foreign, http.StatusUnauthorized, "Invalid token"},
		{"invalid subject", "Bearer " + badSubject, http.StatusUnauthorized, "Invalid token claims"},
		{"other issuer", "Bearer " + otherIssuer, http.StatusUnauthorized, "Invalid token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, "Authorization", tt.header)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestAPITokenAuth_SkipsJWTWhenKeyIsValid(t *testing.T) {
	keys := new(MockKeyValidator)
	keys.On("ValidateKey", mock.Anything, "good").Return(domain.AccountID("bob"), nil)
	keys.On("ValidateKey", mock.Anything, "bad").Return(domain.AccountID(""), apperrors.ErrUnauthorized)
	r := newRouter(middleware.APITokenAuth(keys), middleware.AuthMiddleware(testSecret, testIssuer))

	w := serve(r, middleware.APIKeyHeader, "good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bob", w.Body.String())

	w = serve(r, middleware.APIKeyHeader, "bad")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "a rejected key falls through to bearer auth")

	keys.AssertExpectations(t)
}

func TestRateLimit(t *testing.T) {
	lim := limiter.New(memory.NewStore(), limiter.Rate{Period: time.Minute, Limit: 2})
	r := newRouter(middleware.AuthMiddleware(testSecret, testIssuer), middleware.RateLimit(lim))

	alice, _, err := utils.GenerateJWT("alice", testSecret, time.Hour, "test")
	require.NoError(t, err)
	bob, _, err := utils.GenerateJWT("bob", testSecret, time.Hour, "test")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(r, "Authorization", "Bearer "+alice).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, serve(r, "Authorization", "Bearer "+alice).Code)
	assert.Equal(t, http.StatusOK, serve(r, "Authorization", "Bearer "+bob).Code, "limits are per account")
}

func TestPosthogMiddleware_TracksAuthenticatedSuccess(t *testing.T) {
	tracker := &fakeTracker{}
	r := newRouter(middleware.AuthMiddleware(testSecret, testIssuer), middleware.PosthogMiddleware(tracker))

	token, _, err := utils.GenerateJWT("carol", testSecret, time.Hour, "test")
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/items/42", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, []string{"api_v1_items_id"}, tracker.events)
	assert.Equal(t, []string{"carol"}, tracker.ids)

	serve(r, "", "")
	assert.Len(t, tracker.events, 1, "rejected requests are not tracked")
}

func TestGetLoggerFromCtx_FallsBackToDefault(t *testing.T) {
	assert.NotNil(t, middleware.GetLoggerFromCtx(context.Background()))
	_, ok := middleware.LoggerFromCtx(context.Background())
	assert.False(t, ok)
}
