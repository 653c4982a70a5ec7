// Package model loads pre-trained binary classifiers from JSON artifacts and evaluates them.
//
// Artifacts mirror the fitted state of the corresponding scikit-learn estimators, so a model trained
// offline can be exported field by field. A loaded Classifier is immutable and safe for concurrent use.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	TypeRandomForest       = "random_forest"
	TypeLogisticRegression = "logistic_regression"
)

var (
	ErrInvalidArtifact   = errors.New("invalid model artifact")
	ErrUnsupportedModel  = errors.New("unsupported model type")
	ErrFeatureMismatch   = errors.New("feature vector does not match model")
	ErrNonFiniteFeature  = errors.New("feature value is not finite")
	ErrNonFiniteEstimate = errors.New("model produced a non-finite estimate")
)

// Classifier is a fitted binary classifier.
type Classifier interface {
	// Predict returns the class label for a single row.
	Predict(x []float64) (int, error)
	// PredictProba returns one probability per class, in Classes() order.
	PredictProba(x []float64) ([]float64, error)
	Classes() []int
}

// Artifact is the on-disk representation of a fitted model.
type Artifact struct {
	ModelType    string   `json:"model_type"`
	FeatureNames []string `json:"feature_names"`
	Classes      []int    `json:"classes"`

	// random_forest
	Trees []Tree `json:"trees,omitempty"`

	// logistic_regression
	Coef      []float64 `json:"coef,omitempty"`
	Intercept float64   `json:"intercept,omitempty"`
}

// Tree holds one fitted decision tree in scikit-learn's flat tree_ layout.
// Node 0 is the root; a node whose left child is -1 is a leaf.
type Tree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

// Load reads the artifact at path and builds a Classifier whose input columns must be exactly features.
func Load(path string, features []string) (Classifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model artifact: %w", err)
	}
	defer f.Close()
	return Decode(f, features)
}

// Decode reads a JSON artifact from r.
func Decode(r io.Reader, features []string) (Classifier, error) {
	var a Artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	return New(a, features)
}

// New validates a decoded artifact and builds the matching Classifier.
func New(a Artifact, features []string) (Classifier, error) {
	if err := checkFeatureNames(a.FeatureNames, features); err != nil {
		return nil, err
	}
	if len(a.Classes) != 2 {
		return nil, fmt.Errorf("%w: binary classifier needs 2 classes, got %d", ErrInvalidArtifact, len(a.Classes))
	}
	if a.Classes[0] == a.Classes[1] {
		return nil, fmt.Errorf("%w: duplicate class label %d", ErrInvalidArtifact, a.Classes[0])
	}

	switch a.ModelType {
	case TypeRandomForest:
		return newForest(a)
	case TypeLogisticRegression:
		return newLogistic(a)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModel, a.ModelType)
	}
}

func checkFeatureNames(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("%w: model expects %d features, service provides %d", ErrInvalidArtifact, len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("%w: feature %d is %q, expected %q", ErrInvalidArtifact, i, got[i], want[i])
		}
	}
	return nil
}

func argmax(p []float64) int {
	best := 0
	for i := 1; i < len(p); i++ {
		if p[i] > p[best] {
			best = i
		}
	}
	return best
}
