package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "credit_risk_predictor",
			Name:      "predictions_total",
			Help:      "Successful predictions by predicted class",
		},
		[]string{"prediction"},
	)

	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "credit_risk_predictor",
			Name:      "validation_failures_total",
			Help:      "Rejected request fields by feature name",
		},
		[]string{"field"},
	)

	InferenceFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "credit_risk_predictor",
			Name:      "inference_failures_total",
			Help:      "Model invocations that returned an error or panicked",
		},
	)

	InferenceLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "credit_risk_predictor",
			Name:      "inference_duration_seconds",
			Help:      "Time spent inside the model per prediction",
			Buckets:   []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
		},
	)

	DefaultProbability = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "credit_risk_predictor",
			Name:      "probability_of_default",
			Help:      "Distribution of returned default probabilities",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 9),
		},
	)
)
