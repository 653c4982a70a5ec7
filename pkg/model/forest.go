package model

import (
	"fmt"
	"math"
)

// Forest is a random forest classifier. Its probabilities are the mean of the per-tree leaf
// class distributions, as in scikit-learn's RandomForestClassifier.
type Forest struct {
	classes   []int
	nFeatures int
	trees     []tree
}

type tree struct {
	left, right, feature []int
	threshold            []float64
	proba                [][]float64 // normalized node values; only leaves are read
}

func newForest(a Artifact) (*Forest, error) {
	if len(a.Trees) == 0 {
		return nil, fmt.Errorf("%w: forest has no trees", ErrInvalidArtifact)
	}
	f := &Forest{
		classes:   append([]int(nil), a.Classes...),
		nFeatures: len(a.FeatureNames),
		trees:     make([]tree, 0, len(a.Trees)),
	}
	for i, t := range a.Trees {
		built, err := buildTree(t, f.nFeatures, len(a.Classes))
		if err != nil {
			return nil, fmt.Errorf("%w: tree %d: %v", ErrInvalidArtifact, i, err)
		}
		f.trees = append(f.trees, built)
	}
	return f, nil
}

// buildTree checks that every child index points forward. That rules out cycles, so traversal
// always reaches a leaf.
func buildTree(t Tree, nFeatures, nClasses int) (tree, error) {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return tree{}, fmt.Errorf("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return tree{}, fmt.Errorf("node arrays have different lengths")
	}
	out := tree{
		left:      t.ChildrenLeft,
		right:     t.ChildrenRight,
		feature:   t.Feature,
		threshold: t.Threshold,
		proba:     make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if l == -1 || r == -1 {
			if l != r {
				return tree{}, fmt.Errorf("node %d has only one child", i)
			}
			p, err := normalize(t.Value[i], nClasses)
			if err != nil {
				return tree{}, fmt.Errorf("leaf %d: %v", i, err)
			}
			out.proba[i] = p
			continue
		}
		if l <= i || l >= n || r <= i || r >= n {
			return tree{}, fmt.Errorf("node %d has out-of-range children %d/%d", i, l, r)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= nFeatures {
			return tree{}, fmt.Errorf("node %d splits on unknown feature %d", i, t.Feature[i])
		}
		if math.IsNaN(t.Threshold[i]) || math.IsInf(t.Threshold[i], 0) {
			return tree{}, fmt.Errorf("node %d has a non-finite threshold", i)
		}
	}
	return out, nil
}

// normalize accepts either raw class counts or fractions.
func normalize(v []float64, nClasses int) ([]float64, error) {
	if len(v) != nClasses {
		return nil, fmt.Errorf("value has %d entries, want %d", len(v), nClasses)
	}
	var sum float64
	for _, c := range v {
		if c < 0 || math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("value entries must be finite and non-negative")
		}
		sum += c
	}
	if sum == 0 {
		return nil, fmt.Errorf("value entries sum to zero")
	}
	p := make([]float64, nClasses)
	for k, c := range v {
		p[k] = c / sum
	}
	return p, nil
}

func (f *Forest) Classes() []int { return f.classes }

// NumTrees reports the ensemble size.
func (f *Forest) NumTrees() int { return len(f.trees) }

func (f *Forest) Predict(x []float64) (int, error) {
	p, err := f.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return f.classes[argmax(p)], nil
}

func (f *Forest) PredictProba(x []float64) ([]float64, error) {
	if len(x) != f.nFeatures {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrFeatureMismatch, len(x), f.nFeatures)
	}
	// scikit-learn evaluates trees on float32 inputs.
	x32 := make([]float64, len(x))
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: column %d", ErrNonFiniteFeature, i)
		}
		x32[i] = float64(float32(v))
	}

	out := make([]float64, len(f.classes))
	for _, t := range f.trees {
		leaf := t.apply(x32)
		for k, p := range t.proba[leaf] {
			out[k] += p
		}
	}
	n := float64(len(f.trees))
	for k := range out {
		out[k] /= n
	}
	return out, nil
}

func (t tree) apply(x []float64) int {
	node := 0
	for t.left[node] != -1 {
		if x[t.feature[node]] <= t.threshold[node] {
			node = t.left[node]
		} else {
			node = t.right[node]
		}
	}
	return node
}
