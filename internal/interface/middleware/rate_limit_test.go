package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedEngine(t *testing.T, limit int, allow AllowFunc) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := gin.New()
	r.Use(RateLimit(rdb, limit, time.Minute, KeyByIP(), allow))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r, mr
}

func doGet(r http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_BlocksAfterLimit(t *testing.T) {
	r, _ := newLimitedEngine(t, 2, nil)

	w := doGet(r, "203.0.113.7:5000")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, doGet(r, "203.0.113.7:5000").Code)

	w = doGet(r, "203.0.113.7:5000")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"status":"error"`)

	// other clients keep their own window
	assert.Equal(t, http.StatusOK, doGet(r, "203.0.113.8:5000").Code)
}

func TestRateLimit_WindowExpires(t *testing.T) {
	r, mr := newLimitedEngine(t, 1, nil)

	assert.Equal(t, http.StatusOK, doGet(r, "203.0.113.7:5000").Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(r, "203.0.113.7:5000").Code)

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, doGet(r, "203.0.113.7:5000").Code)
}

func TestRateLimit_AllowPrivateIPBypasses(t *testing.T) {
	r, _ := newLimitedEngine(t, 1, AllowPrivateIP())

	for i := 0; i < 3; i++ {
		w := doGet(r, "10.1.2.3:5000")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimit_FailsOpenWithoutRedis(t *testing.T) {
	r, mr := newLimitedEngine(t, 1, nil)
	mr.Close()

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doGet(r, "203.0.113.7:5000").Code)
	}
}

func TestRateLimit_DisabledWithoutClient(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(nil, 1, time.Minute, KeyByIP(), nil))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNoContent, doGet(r, "203.0.113.7:5000").Code)
	}
}

func TestRealIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RealIP())
	r.GET("/ip", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("real_ip")) })

	cases := map[string]http.Header{
		"198.51.100.1": {"Cf-Connecting-Ip": {"198.51.100.1"}, "X-Forwarded-For": {"198.51.100.2"}},
		"198.51.100.2": {"X-Forwarded-For": {"198.51.100.2, 10.0.0.1"}},
		"198.51.100.3": {"X-Forwarded-For": {"garbage"}, "X-Real-Ip": {"198.51.100.3"}},
		"192.0.2.10":   {},
	}
	for want, hdr := range cases {
		req := httptest.NewRequest(http.MethodGet, "/ip", nil)
		req.RemoteAddr = "192.0.2.10:1234"
		req.Header = hdr
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Body.String())
	}
}
