package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.GET("/fail", func(c *gin.Context) { _ = c.Error(errors.New("hidden detail")) })
	return r
}

func serve(r http.Handler, method, path string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "10.0.0.1:1234"
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestID())

	w := serve(r, http.MethodGet, "/ok", nil)
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	w = serve(r, http.MethodGet, "/ok", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRecoveryAndErrorHandler(t *testing.T) {
	r := newEngine(RequestID(), Recovery(), ErrorHandler())

	w := serve(r, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"internal server error"}`, w.Body.String())

	w = serve(r, http.MethodGet, "/fail", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "hidden detail")
}

func TestCORS_Preflight(t *testing.T) {
	r := newEngine(CORS())
	r.OPTIONS("/ok", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := serve(r, http.MethodOptions, "/ok", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter(t *testing.T) {
	r := newEngine(RateLimiter(2, time.Minute))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ok", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ok", nil).Code)
	w := serve(r, http.MethodGet, "/ok", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	unlimited := newEngine(RateLimiter(0, time.Minute))
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(unlimited, http.MethodGet, "/ok", nil).Code)
	}
}

func TestLimiter_WindowResetsAndPurges(t *testing.T) {
	l := &limiter{limit: 1, window: time.Second, clients: map[string]*clientWindow{}, lastGC: time.Unix(0, 0)}
	now := time.Unix(1000, 0)

	ok, _ := l.allow("a", now)
	assert.True(t, ok)
	ok, _ = l.allow("a", now.Add(500*time.Millisecond))
	assert.False(t, ok)
	ok, _ = l.allow("a", now.Add(2*time.Second))
	assert.True(t, ok)

	l.allow("b", now)
	l.purge(now.Add(10 * time.Second))
	assert.Empty(t, l.clients)
}
