package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/credit-risk-api/pkg"
	"github.com/nimeshabuddhika/credit-risk-api/pkg/model"
	"github.com/nimeshabuddhika/credit-risk-api/services/predictor-api/configs"
	"github.com/nimeshabuddhika/credit-risk-api/services/predictor-api/internal/features"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// writeModel stores a single-stump forest splitting on EXT_SOURCE_3 at 0.4.
func writeModel(t *testing.T) string {
	t.Helper()
	a := model.Artifact{
		ModelType:    model.TypeRandomForest,
		FeatureNames: features.CreditRisk.Names(),
		Classes:      []int{0, 1},
		Trees: []model.Tree{{
			ChildrenLeft:  []int{1, -1, -1},
			ChildrenRight: []int{2, -1, -1},
			Feature:       []int{0, -2, -2},
			Threshold:     []float64{0.4, -2, -2},
			Value:         [][]float64{{0, 0}, {3, 7}, {15, 1}},
		}},
	}
	b, err := json.Marshal(a)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "random_forest_credit.json")
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func testConfig(modelPath string) *configs.Config {
	return &configs.Config{
		Port:               "0",
		ModelPath:          modelPath,
		ServiceName:        "credit-risk-api-test",
		ShutdownTimeout:    time.Second,
		ReadHeaderTimeout:  time.Second,
		CorsAllowedOrigins: "*",
	}
}

func newServer(t *testing.T) *http.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv, cleanup, err := NewApp(context.Background(), zaptest.NewLogger(t), testConfig(writeModel(t)))
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return srv
}

func serve(srv *http.Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, req)
	return w
}

func TestNewApp_ServesPredictions(t *testing.T) {
	srv := newServer(t)
	assert.Equal(t, ":0", srv.Addr)

	body := `{"EXT_SOURCE_3": 0.2, "EXT_SOURCE_2": 0.6, "FLAG_PHONE": 1,
		"REG_CITY_NOT_WORK_CITY": 0, "REGION_RATING_CLIENT": 2, "AMT_REQ_CREDIT_BUREAU_YEAR": 1.0}`
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := serve(srv, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"prediction": 1, "probability_of_default": 0.7}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(pkg.HeaderTraceId))
}

func TestNewApp_Health(t *testing.T) {
	srv := newServer(t)

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok", "model_loaded": true}`, w.Body.String())
}

func TestNewApp_Metrics(t *testing.T) {
	srv := newServer(t)
	serve(srv, httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader("{")))

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "credit_risk_api_http_requests_total")
}

func TestNewApp_CORSPreflight(t *testing.T) {
	srv := newServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/predict", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := serve(srv, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewApp_FailsWithoutModel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name  string
		setup func(t *testing.T) string
	}{
		{
			name:  "missing artifact",
			setup: func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.json") },
		},
		{
			name: "corrupt artifact",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "model.json")
				require.NoError(t, os.WriteFile(path, []byte("not a model"), 0o600))
				return path
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, cleanup, err := NewApp(context.Background(), zaptest.NewLogger(t), testConfig(tt.setup(t)))
			require.Error(t, err)
			assert.Nil(t, srv)
			assert.Nil(t, cleanup)

			var appErr pkg.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, pkg.ErrModelLoadCode, appErr.Code)
		})
	}
}

func TestCorsConfig(t *testing.T) {
	assert.True(t, corsConfig("*").AllowAllOrigins)
	assert.True(t, corsConfig("").AllowAllOrigins)

	cfg := corsConfig("https://a.example, https://b.example")
	assert.False(t, cfg.AllowAllOrigins)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowOrigins)
}
