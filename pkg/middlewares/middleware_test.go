package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/credit-risk-api/pkg"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(pkg.TraceId))
	})
	return r
}

func get(r http.Handler, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTraceID(t *testing.T) {
	r := newEngine(TraceID())

	w := get(r, nil)
	generated := w.Header().Get(pkg.HeaderTraceId)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	w = get(r, map[string]string{pkg.HeaderTraceId: "upstream-123"})
	assert.Equal(t, "upstream-123", w.Header().Get(pkg.HeaderTraceId))
	assert.Equal(t, "upstream-123", w.Body.String())
}

func TestRateLimit(t *testing.T) {
	limiter := pkg.NewAdmissionLimiter(1, 2, zap.NewNop())
	r := newEngine(TraceID(), RateLimit(zap.NewNop(), limiter))

	assert.Equal(t, http.StatusOK, get(r, nil).Code)
	assert.Equal(t, http.StatusOK, get(r, nil).Code)

	w := get(r, map[string]string{pkg.HeaderTraceId: "t-1"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), pkg.ErrRateLimitCode.Code)
}

func TestRateLimit_Unlimited(t *testing.T) {
	r := newEngine(RateLimit(zap.NewNop(), pkg.NewAdmissionLimiter(0, 0, zap.NewNop())))
	for i := 0; i < 50; i++ {
		assert.Equal(t, http.StatusOK, get(r, nil).Code)
	}
}
