package model

import (
	"fmt"
	"math"
)

// Logistic is a binary logistic regression classifier.
type Logistic struct {
	classes   []int
	coef      []float64
	intercept float64
}

func newLogistic(a Artifact) (*Logistic, error) {
	if len(a.Coef) != len(a.FeatureNames) {
		return nil, fmt.Errorf("%w: %d coefficients for %d features", ErrInvalidArtifact, len(a.Coef), len(a.FeatureNames))
	}
	for i, c := range a.Coef {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("%w: coefficient %d is not finite", ErrInvalidArtifact, i)
		}
	}
	if math.IsNaN(a.Intercept) || math.IsInf(a.Intercept, 0) {
		return nil, fmt.Errorf("%w: intercept is not finite", ErrInvalidArtifact)
	}
	return &Logistic{
		classes:   append([]int(nil), a.Classes...),
		coef:      append([]float64(nil), a.Coef...),
		intercept: a.Intercept,
	}, nil
}

func (l *Logistic) Classes() []int { return l.classes }

func (l *Logistic) Predict(x []float64) (int, error) {
	z, err := l.decision(x)
	if err != nil {
		return 0, err
	}
	if z > 0 {
		return l.classes[1], nil
	}
	return l.classes[0], nil
}

func (l *Logistic) PredictProba(x []float64) ([]float64, error) {
	z, err := l.decision(x)
	if err != nil {
		return nil, err
	}
	p := 1 / (1 + math.Exp(-z))
	return []float64{1 - p, p}, nil
}

func (l *Logistic) decision(x []float64) (float64, error) {
	if len(x) != len(l.coef) {
		return 0, fmt.Errorf("%w: got %d values, want %d", ErrFeatureMismatch, len(x), len(l.coef))
	}
	z := l.intercept
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: column %d", ErrNonFiniteFeature, i)
		}
		z += l.coef[i] * v
	}
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return 0, ErrNonFiniteEstimate
	}
	return z, nil
}
