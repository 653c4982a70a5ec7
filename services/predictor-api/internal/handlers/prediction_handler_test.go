package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/credit-risk-api/pkg"
	middleware "github.com/nimeshabuddhika/credit-risk-api/pkg/middlewares"
	"github.com/nimeshabuddhika/credit-risk-api/services/predictor-api/internal/features"
	"github.com/nimeshabuddhika/credit-risk-api/services/predictor-api/internal/services"
	"github.com/nimeshabuddhika/credit-risk-api/services/predictor-api/internal/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

const exampleBody = `{"EXT_SOURCE_3": 0.5, "EXT_SOURCE_2": 0.6, "FLAG_PHONE": 1,
	"REG_CITY_NOT_WORK_CITY": 0, "REGION_RATING_CLIENT": 2, "AMT_REQ_CREDIT_BUREAU_YEAR": 1.0}`

// stubClassifier scores a record by its first column and counts invocations.
// The default probability is 1 - EXT_SOURCE_3/3.
type stubClassifier struct {
	calls atomic.Int32
	err   error
}

func (s *stubClassifier) Predict(x []float64) (int, error) {
	s.calls.Add(1)
	if s.err != nil {
		return 0, s.err
	}
	if 1-x[0]/3 > 0.5 {
		return 1, nil
	}
	return 0, nil
}

func (s *stubClassifier) PredictProba(x []float64) ([]float64, error) {
	s.calls.Add(1)
	p := 1 - x[0]/3
	return []float64{1 - p, p}, nil
}

func (s *stubClassifier) Classes() []int { return []int{0, 1} }

func newRouter(t *testing.T, clf *stubClassifier) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zaptest.NewLogger(t)

	svc, err := services.NewPredictionService(services.PredictionServiceConfig{
		Logger:     logger,
		Classifier: clf,
		Schema:     features.CreditRisk,
	})
	require.NoError(t, err)

	r := gin.New()
	api := r.Group("")
	api.Use(middleware.TraceID())
	NewPredictionHandler(logger, svc).RegisterRoutes(api)
	NewBaseHandler(logger).RegisterRoutes(r)
	return r
}

func post(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) pkg.ErrorResponse {
	t.Helper()
	var out pkg.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestPredict_Success(t *testing.T) {
	r := newRouter(t, &stubClassifier{})

	w := post(r, exampleBody)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(pkg.HeaderTraceId))

	var out views.PredictionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Contains(t, []int{0, 1}, out.Prediction)
	assert.GreaterOrEqual(t, out.ProbabilityOfDefault, 0.0)
	assert.LessOrEqual(t, out.ProbabilityOfDefault, 1.0)
	assert.Equal(t, out.ProbabilityOfDefault, math.Round(out.ProbabilityOfDefault*1e4)/1e4)
	assert.JSONEq(t, `{"prediction": 1, "probability_of_default": 0.8333}`, w.Body.String())
}

func TestPredict_IdenticalInputsIdenticalOutput(t *testing.T) {
	r := newRouter(t, &stubClassifier{})

	first := post(r, exampleBody)
	second := post(r, exampleBody)

	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestPredict_EchoesTraceID(t *testing.T) {
	r := newRouter(t, &stubClassifier{})

	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(exampleBody))
	req.Header.Set(pkg.HeaderTraceId, "trace-abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "trace-abc", w.Header().Get(pkg.HeaderTraceId))
}

func TestPredict_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "score out of range", body: strings.Replace(exampleBody, `"EXT_SOURCE_3": 0.5`, `"EXT_SOURCE_3": 1.5`, 1), field: "EXT_SOURCE_3"},
		{name: "rating out of range", body: strings.Replace(exampleBody, `"REGION_RATING_CLIENT": 2`, `"REGION_RATING_CLIENT": 5`, 1), field: "REGION_RATING_CLIENT"},
		{name: "flag out of set", body: strings.Replace(exampleBody, `"FLAG_PHONE": 1`, `"FLAG_PHONE": 2`, 1), field: "FLAG_PHONE"},
		{name: "missing field", body: strings.Replace(exampleBody, `"AMT_REQ_CREDIT_BUREAU_YEAR": 1.0`, `"OTHER": 1`, 1), field: "AMT_REQ_CREDIT_BUREAU_YEAR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clf := &stubClassifier{}
			r := newRouter(t, clf)

			w := post(r, tt.body)

			require.Equal(t, http.StatusUnprocessableEntity, w.Code)
			out := decodeError(t, w)
			assert.Equal(t, pkg.ErrValidationCode.Code, out.Code)
			assert.NotEmpty(t, out.Message)
			require.Len(t, out.Fields, 1)
			assert.Equal(t, tt.field, out.Fields[0].Field)
			assert.NotEmpty(t, out.Fields[0].Message)
			assert.Zero(t, clf.calls.Load(), "model must not be invoked")
		})
	}
}

func TestPredict_MalformedBody(t *testing.T) {
	for _, body := range []string{``, `{"EXT_SOURCE_3": `, `[1, 2, 3]`, exampleBody + ` garbage`, exampleBody + ` {}`} {
		clf := &stubClassifier{}
		r := newRouter(t, clf)

		w := post(r, body)

		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
		assert.Equal(t, pkg.ErrInvalidInputCode.Code, decodeError(t, w).Code)
		assert.Zero(t, clf.calls.Load())
	}
}

func TestPredict_TrailingWhitespaceAccepted(t *testing.T) {
	r := newRouter(t, &stubClassifier{})

	w := post(r, exampleBody+"\n\t ")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPredict_LaxNumericInput(t *testing.T) {
	clf := &stubClassifier{}
	r := newRouter(t, clf)
	body := strings.Replace(exampleBody, `"EXT_SOURCE_3": 0.5`, `"EXT_SOURCE_3": "0.5"`, 1)
	body = strings.Replace(body, `"FLAG_PHONE": 1`, `"FLAG_PHONE": true`, 1)

	w := post(r, body)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"prediction": 1, "probability_of_default": 0.8333}`, w.Body.String())
	assert.NotZero(t, clf.calls.Load())
}

func TestPredict_InferenceFailure(t *testing.T) {
	clf := &stubClassifier{err: errors.New("X has 5 features, but model is expecting 6")}
	r := newRouter(t, clf)

	w := post(r, exampleBody)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	out := decodeError(t, w)
	assert.Equal(t, pkg.ErrInferenceCode.Code, out.Code)
	assert.Equal(t, "X has 5 features, but model is expecting 6", out.Details)

	// the process keeps serving
	clf.err = nil
	assert.Equal(t, http.StatusOK, post(r, exampleBody).Code)
}

func TestPredict_MissingTraceID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, err := services.NewPredictionService(services.PredictionServiceConfig{
		Logger:     zap.NewNop(),
		Classifier: &stubClassifier{},
		Schema:     features.CreditRisk,
	})
	require.NoError(t, err)
	r := gin.New()
	NewPredictionHandler(zap.NewNop(), svc).RegisterRoutes(r.Group(""))

	w := post(r, exampleBody)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, pkg.ErrServerCode.Code, decodeError(t, w).Code)
}

func TestGetHealth(t *testing.T) {
	r := newRouter(t, &stubClassifier{})
	post(r, exampleBody)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok", "model_loaded": true}`, w.Body.String())
}
