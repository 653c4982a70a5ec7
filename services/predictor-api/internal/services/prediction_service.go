package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/nimeshabuddhika/credit-risk-api/pkg"
	"github.com/nimeshabuddhika/credit-risk-api/pkg/model"
	"github.com/nimeshabuddhika/credit-risk-api/pkg/utils"
	"github.com/nimeshabuddhika/credit-risk-api/services/predictor-api/internal/features"
	"github.com/nimeshabuddhika/credit-risk-api/services/predictor-api/internal/observability"
	"github.com/nimeshabuddhika/credit-risk-api/services/predictor-api/internal/views"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const probabilityDecimals = 4

type PredictionService interface {
	Predict(ctx context.Context, traceID string, record map[string]any) (views.PredictionResult, error)
}

// PredictionServiceConfig holds the dependencies of the prediction service.
// Classifier is shared by all requests and must not be mutated after construction.
type PredictionServiceConfig struct {
	Logger     *zap.Logger
	Classifier model.Classifier
	Schema     features.Schema
	Tracer     trace.Tracer // optional; defaults to the global provider
}

type PredictionServiceImpl struct {
	logger     *zap.Logger
	classifier model.Classifier
	schema     features.Schema
	tracer     trace.Tracer
	positive   int // index of the default class in classifier.Classes()
}

// NewPredictionService checks that the classifier predicts exactly the classes {0, 1}.
func NewPredictionService(cfg PredictionServiceConfig) (PredictionService, error) {
	if cfg.Classifier == nil {
		return nil, pkg.ErrModelNotLoaded
	}
	positive := -1
	hasNegative := false
	for i, c := range cfg.Classifier.Classes() {
		switch c {
		case pkg.PositiveClass:
			positive = i
		case 0:
			hasNegative = true
		}
	}
	if positive < 0 || !hasNegative {
		return nil, fmt.Errorf("%w: classes %v, want [0 1]", model.ErrInvalidArtifact, cfg.Classifier.Classes())
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer("credit-risk-api/predictor")
	}
	return &PredictionServiceImpl{
		logger:     cfg.Logger,
		classifier: cfg.Classifier,
		schema:     cfg.Schema,
		tracer:     tracer,
		positive:   positive,
	}, nil
}

// Predict validates record, runs the model and formats the result. Validation failures never reach the model.
func (s *PredictionServiceImpl) Predict(ctx context.Context, traceID string, record map[string]any) (views.PredictionResult, error) {
	x, err := s.schema.Vector(record)
	if err != nil {
		var vErr pkg.ValidationError
		if errors.As(err, &vErr) {
			for _, f := range vErr.Fields {
				observability.ValidationFailures.WithLabelValues(f.Field).Inc()
			}
		}
		return views.PredictionResult{}, pkg.NewAppError(pkg.ErrValidationCode, pkg.ErrValidationCode.Message, err)
	}

	_, span := s.tracer.Start(ctx, "model.predict")
	defer span.End()

	start := time.Now()
	label, proba, err := s.infer(x)
	observability.InferenceLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		observability.InferenceFailures.Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return views.PredictionResult{}, pkg.NewAppError(pkg.ErrInferenceCode, pkg.ErrInferenceCode.Message, err)
	}

	result := views.PredictionResult{
		Prediction:           label,
		ProbabilityOfDefault: utils.RoundTo(proba, probabilityDecimals),
	}
	span.SetAttributes(
		attribute.Int("prediction", result.Prediction),
		attribute.Float64("probability_of_default", result.ProbabilityOfDefault),
	)
	observability.PredictionsTotal.WithLabelValues(strconv.Itoa(result.Prediction)).Inc()
	observability.DefaultProbability.Observe(result.ProbabilityOfDefault)

	s.logger.Debug("prediction_completed",
		zap.String(pkg.TraceId, traceID),
		zap.Int("prediction", result.Prediction),
		zap.Float64("probability_of_default", result.ProbabilityOfDefault),
	)
	return result, nil
}

// infer calls both model operations. A panicking model is reported as an error so the request
// fails and the process keeps serving.
func (s *PredictionServiceImpl) infer(x []float64) (label int, positive float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("model panicked: %v", r)
		}
	}()

	label, err = s.classifier.Predict(x)
	if err != nil {
		return 0, 0, err
	}
	proba, err := s.classifier.PredictProba(x)
	if err != nil {
		return 0, 0, err
	}
	if len(proba) <= s.positive {
		return 0, 0, fmt.Errorf("%w: %d probabilities for %d classes", pkg.ErrInvalidPrediction, len(proba), len(s.classifier.Classes()))
	}
	if label != 0 && label != pkg.PositiveClass {
		return 0, 0, fmt.Errorf("%w: label %d", pkg.ErrInvalidPrediction, label)
	}
	positive = proba[s.positive]
	if math.IsNaN(positive) || positive < 0 || positive > 1 {
		return 0, 0, fmt.Errorf("%w: probability %v", pkg.ErrInvalidPrediction, positive)
	}
	return label, positive, nil
}
