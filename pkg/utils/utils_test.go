package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/nimeshabuddhika/credit-risk-api/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 0.8766, RoundTo(0.87656, 4))
	assert.Equal(t, 0.1234, RoundTo(0.12344, 4))
	assert.Equal(t, 0.0, RoundTo(0.00004, 4))
	assert.Equal(t, 1.0, RoundTo(0.99996, 4))
	assert.Equal(t, 0.5, RoundTo(0.5, 4))
}

func TestGetTraceID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err := GetTraceID(c)
	assert.Error(t, err)

	c.Set(pkg.TraceId, "abc")
	id, err := GetTraceID(c)
	require.NoError(t, err)
	assert.Equal(t, "abc", id)
}

func TestFormatConfigErrors(t *testing.T) {
	type cfg struct {
		Port      string `mapstructure:"PORT" validate:"required,numeric"`
		ModelPath string `mapstructure:"MODEL_PATH" validate:"required"`
	}
	c := cfg{Port: "abc"}
	err := FormatConfigErrors(zap.NewNop(), validator.New().Struct(c), c)
	require.Error(t, err)
	assert.Equal(t, "invalid config: PORT (numeric), MODEL_PATH (required)", err.Error())
}

func TestNewHTTPClient_Defaults(t *testing.T) {
	c := NewHTTPClient()
	assert.Equal(t, defaultClientTimeout, c.Timeout)

	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, defaultResponseHeaderTimeout, tr.ResponseHeaderTimeout)

	c = NewHTTPClient(
		WithClientTimeout(3*time.Second),
		WithResponseHeaderTimeout(750*time.Millisecond),
		WithMaxConnsPerHost(8),
	)
	assert.Equal(t, 3*time.Second, c.Timeout)
	tr, ok = c.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 750*time.Millisecond, tr.ResponseHeaderTimeout)
	assert.Equal(t, 8, tr.MaxConnsPerHost)
}
