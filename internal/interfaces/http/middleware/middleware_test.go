package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claude-review-dashboard/internal/infrastructure/persistence/redis"
	"claude-review-dashboard/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	e := gin.New()
	e.Use(mw...)
	ok := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.GetString(UserContextKey)})
	}
	e.GET("/api/costs", ok)
	e.GET("/health", ok)
	e.POST("/api/auth/github", ok)
	e.GET("/panic", func(*gin.Context) { panic("boom") })
	return e
}

func serve(e *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	sessions := utils.NewSessionManager("secret", "issuer")
	e := newEngine(Auth(AuthConfig{
		Enabled:      true,
		Sessions:     sessions,
		AllowedUsers: utils.NewAllowList([]string{"aspenas"}),
		SkipPaths:    DefaultSkipPaths,
	}))

	valid, _, err := sessions.Issue("aspenas", "", "", time.Hour)
	require.NoError(t, err)
	outsider, _, err := sessions.Issue("mallory", "", "", time.Hour)
	require.NoError(t, err)
	expired, _, err := sessions.Issue("aspenas", "", "", -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		header string
		want   int
	}{
		{"missing header", http.MethodGet, "/api/costs", "", http.StatusUnauthorized},
		{"wrong scheme", http.MethodGet, "/api/costs", "Basic " + valid, http.StatusUnauthorized},
		{"garbage", http.MethodGet, "/api/costs", "Bearer garbage", http.StatusUnauthorized},
		{"expired", http.MethodGet, "/api/costs", "Bearer " + expired, http.StatusUnauthorized},
		{"not allowed", http.MethodGet, "/api/costs", "Bearer " + outsider, http.StatusForbidden},
		{"valid", http.MethodGet, "/api/costs", "Bearer " + valid, http.StatusOK},
		{"health skipped", http.MethodGet, "/health", "", http.StatusOK},
		{"login skipped", http.MethodPost, "/api/auth/github", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			w := serve(e, tt.method, tt.path, headers)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			if tt.want == http.StatusOK && tt.header != "" {
				assert.Contains(t, w.Body.String(), "aspenas")
			}
		})
	}
}

func TestAuth_Disabled(t *testing.T) {
	e := newEngine(Auth(AuthConfig{Enabled: false}))
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/api/costs", nil).Code)
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	limiter := redis.NewRateLimiter(redis.NewClientFromRedis(rdb, "test"))

	e := newEngine(RateLimit(RateLimitConfig{Enabled: true, RequestsPerMinute: 2}, limiter))

	w := serve(e, http.MethodGet, "/api/costs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/api/costs", nil).Code)

	w = serve(e, http.MethodGet, "/api/costs", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	// 不同路由独立计数
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/health", nil).Code)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string, int, time.Duration) (bool, int, error) {
	return false, 0, errors.New("redis down")
}
func (failingLimiter) RateLimitKey(clientID, route string) string { return clientID + route }

func TestRateLimit_FailsOpen(t *testing.T) {
	e := newEngine(RateLimit(RateLimitConfig{Enabled: true}, failingLimiter{}))
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/api/costs", nil).Code)
}

func TestRecovery(t *testing.T) {
	e := newEngine(Recovery())
	w := serve(e, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"internal server error"`)
}

func TestRequestID(t *testing.T) {
	e := newEngine(RequestID())

	w := serve(e, http.MethodGet, "/health", map[string]string{RequestIDHeader: "req-123"})
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))

	w = serve(e, http.MethodGet, "/health", nil)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}
