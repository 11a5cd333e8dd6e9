package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/freshmilk-storefront/internal/config"
	"github.com/your-org/freshmilk-storefront/internal/domain/cart"
)

type checkFunc func(ctx context.Context) error

func (f checkFunc) Health(ctx context.Context) error { return f(ctx) }

type noRepository struct{}

func (noRepository) Open(cart.Owner) cart.Persistence { return nil }

func newTestServer(t *testing.T, checks map[string]HealthChecker) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()
	cfg := &config.Config{
		App:    config.AppConfig{Version: "test", Environment: "test"},
		Server: config.ServerConfig{Port: "0"},
		JWT:    config.JWTConfig{Secret: "a-perfectly-long-secret-for-testing-only"},
		Cart:   config.CartConfig{SessionHeader: "X-Session-ID", SessionCookie: "session_id"},
	}
	return NewServer(Dependencies{
		Config: cfg,
		Logger: logger,
		Carts:  cart.NewService(noRepository{}, logger),
		Checks: checks,
	})
}

func TestServer_Health(t *testing.T) {
	healthy := checkFunc(func(context.Context) error { return nil })
	failing := checkFunc(func(context.Context) error { return errors.New("connection refused") })

	srv := newTestServer(t, map[string]HealthChecker{"database": healthy, "redis": healthy})
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	srv = newTestServer(t, map[string]HealthChecker{"database": healthy, "redis": failing})
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "healthy", body.Checks["database"])
	assert.Equal(t, "unhealthy", body.Checks["redis"])
}

func TestServer_RoutesAndHeaders(t *testing.T) {
	srv := newTestServer(t, nil)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	// checkout routes require a token
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/coupons", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
