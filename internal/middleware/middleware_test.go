package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gig-booking/internal/config"
	"github.com/iliyamo/gig-booking/internal/identity"
	"github.com/iliyamo/gig-booking/internal/logger"
	"github.com/iliyamo/gig-booking/internal/utils"
)

func serve(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	e := echo.New()
	var seen string
	e.GET("/v1/ping", func(c echo.Context) error {
		if id, ok := identity.FromContext(c.Request().Context()); ok {
			seen = id.ProfileID
		}
		return c.NoContent(http.StatusNoContent)
	}, mw)

	req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func TestJWTAuthAttachesCaller(t *testing.T) {
	tok, err := utils.NewAccessToken("secret", "profile-7", time.Minute)
	require.NoError(t, err)

	rec, seen := serve(t, JWTAuth("secret"), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "profile-7", seen)
}

func TestJWTAuthRejects(t *testing.T) {
	wrongKey, err := utils.NewAccessToken("other", "profile-7", time.Minute)
	require.NoError(t, err)
	expired, err := utils.NewAccessToken("secret", "profile-7", -time.Minute)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing":    "",
		"not bearer": "Basic abc",
		"garbage":    "Bearer not-a-jwt",
		"wrong key":  "Bearer " + wrongKey.Token,
		"expired":    "Bearer " + expired.Token,
	} {
		rec, seen := serve(t, JWTAuth("secret"), header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
		assert.Contains(t, rec.Body.String(), `"error":"unauthenticated"`, name)
		assert.Empty(t, seen, name)
	}
}

func TestTokenBucketDisabledPassesThrough(t *testing.T) {
	cfg := config.Defaults().RateLimit
	rec, _ := serve(t, NewTokenBucket(cfg, nil, logger.Nop()), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings/b1/accept", nil)
	req.Header.Set("X-Real-IP", "10.0.0.1")
	req = req.WithContext(identity.WithCaller(req.Context(), identity.Identity{ProfileID: "p1"}))
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/bookings/:id/accept")

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_user_route"}
	assert.Equal(t, "rl:ip:10.0.0.1:user:p1:route:POST /v1/bookings/:id/accept", buildRateKey(cfg, c))

	cfg.KeyStrategy = "user"
	assert.Equal(t, "rl:user:p1", buildRateKey(cfg, c))
}

func TestAsInt64(t *testing.T) {
	assert.Equal(t, int64(3), asInt64(int64(3)))
	assert.Equal(t, int64(4), asInt64("4"))
	assert.Equal(t, int64(0), asInt64(nil))
}

func limiterConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            2 * time.Hour,
		KeyStrategy:    "ip",
		Prefix:         "rl",
	}
}

func TestTokenBucketLimits(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	mw := NewTokenBucket(limiterConfig(), rdb, logger.Nop())

	for i, remaining := range []string{"1", "0"} {
		rec, _ := serve(t, mw, "")
		require.Equal(t, http.StatusNoContent, rec.Code, "request %d", i)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, remaining, rec.Header().Get("X-RateLimit-Remaining"))
	}

	rec, _ := serve(t, mw, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Greater(t, retry, 0)
	assert.LessOrEqual(t, retry, 3600)
	assert.Contains(t, rec.Body.String(), `"error":"too_many_requests"`)

	assert.True(t, mr.Exists("rl:ip:192.0.2.1"))
}

func TestTokenBucketRedisErrorPassesThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	cfg := limiterConfig()
	cfg.Debug = true
	mw := NewTokenBucket(cfg, rdb, logger.Nop())

	mr.Close()
	rec, _ := serve(t, mw, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}
