package rtree

import (
	"sort"

	"github.com/gocart-ml/gocart/dataset"
	"github.com/gocart-ml/gocart/pkg/errors"
	"github.com/gocart-ml/gocart/tree"
)

// IndependentModel holds one regression tree per output dimension.
// Predictions traverse every tree and assemble the per-dimension leaf
// estimates into a single multi-dimensional output.
type IndependentModel struct {
	name       string
	featureMap *dataset.FeatureMap
	info       *dataset.RegressionInfo
	roots      map[string]tree.Node
}

// NewIndependentModel constructs a model from one root per dimension.
// Every dimension in the output domain must have a tree.
func NewIndependentModel(name string, fm *dataset.FeatureMap, info *dataset.RegressionInfo, roots map[string]tree.Node) (*IndependentModel, error) {
	if len(roots) != info.Size() {
		return nil, errors.NewDimensionError("NewIndependentModel", info.Size(), len(roots), 1)
	}
	for _, dim := range info.Dimensions() {
		if roots[dim] == nil {
			return nil, errors.NewValueError("NewIndependentModel", "missing tree for dimension "+dim)
		}
	}
	return &IndependentModel{name: name, featureMap: fm, info: info, roots: roots}, nil
}

// Name returns the model name.
func (m *IndependentModel) Name() string { return m.name }

// FeatureMap returns the feature domain the model was trained on.
func (m *IndependentModel) FeatureMap() *dataset.FeatureMap { return m.featureMap }

// OutputInfo returns the output domain the model was trained on.
func (m *IndependentModel) OutputInfo() *dataset.RegressionInfo { return m.info }

// Root returns the tree for a dimension, or nil when unknown.
func (m *IndependentModel) Root(dim string) tree.Node { return m.roots[dim] }

// Predict routes an example through every dimension's tree and merges
// the leaf estimates. It errors when the example shares no features
// with the model's feature domain.
func (m *IndependentModel) Predict(e *dataset.Example) (*tree.Prediction, error) {
	vec := dataset.NewSparseVector(e, m.featureMap)
	if vec.NumActive() == 0 {
		return nil, errors.NewValueError("Predict", "example shares no features with the model")
	}

	dims := m.info.Dimensions()
	values := make([]float64, len(dims))
	variances := make([]float64, len(dims))
	for d, dim := range dims {
		leaf := tree.Traverse(m.roots[dim], vec)
		out := leaf.Output().(dataset.Regressor)
		values[d] = out.Values[0]
		if len(out.Variances) > 0 {
			variances[d] = out.Variances[0]
		}
	}
	return &tree.Prediction{
		Output:            dataset.Regressor{Names: dims, Values: values, Variances: variances},
		NumActiveFeatures: vec.NumActive(),
	}, nil
}

// Depth returns the depth of the deepest per-dimension tree.
func (m *IndependentModel) Depth() int {
	max := 0
	for _, root := range m.roots {
		if d := tree.Depth(root); d > max {
			max = d
		}
	}
	return max
}

// Features returns the names of every feature any tree splits on, in
// dimension-id then breadth-first discovery order.
func (m *IndependentModel) Features() []string {
	var names []string
	seen := make(map[string]bool)
	for _, dim := range m.info.Dimensions() {
		for _, name := range m.dimFeatures(dim) {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// TopFeatures returns the n most frequently split-on features summed
// across every dimension's tree. Ties keep their discovery order.
// n < 0 returns every splitting feature.
func (m *IndependentModel) TopFeatures(n int) []tree.FeatureImportance {
	counts := make(map[string]int)
	var order []string
	for _, dim := range m.info.Dimensions() {
		queue := []tree.Node{m.roots[dim]}
		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]
			if node == nil || node.IsLeaf() {
				continue
			}
			split := node.(*tree.SplitNode)
			name := m.featureMap.Name(split.Feature())
			if _, seen := counts[name]; !seen {
				order = append(order, name)
			}
			counts[name]++
			queue = append(queue, split.Greater(), split.LessOrEqual())
		}
	}

	ranked := make([]tree.FeatureImportance, 0, len(order))
	for _, name := range order {
		ranked = append(ranked, tree.FeatureImportance{Name: name, Score: float64(counts[name])})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if n >= 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

func (m *IndependentModel) dimFeatures(dim string) []string {
	var names []string
	seen := make(map[string]bool)
	queue := []tree.Node{m.roots[dim]}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if node == nil || node.IsLeaf() {
			continue
		}
		split := node.(*tree.SplitNode)
		name := m.featureMap.Name(split.Feature())
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		queue = append(queue, split.Greater(), split.LessOrEqual())
	}
	return names
}

// Flatten serializes every dimension's tree into its record list.
func (m *IndependentModel) Flatten() map[string][]tree.Record {
	out := make(map[string][]tree.Record, len(m.roots))
	for dim, root := range m.roots {
		out[dim] = tree.Flatten(root)
	}
	return out
}

// BuildIndependentModel reconstructs an IndependentModel from flattened
// per-dimension record lists. The number of trees must match the output
// domain size exactly.
func BuildIndependentModel(name string, fm *dataset.FeatureMap, info *dataset.RegressionInfo, records map[string][]tree.Record) (*IndependentModel, error) {
	if len(records) != info.Size() {
		return nil, errors.Wrapf(errors.ErrCorruptModel, "expected %d trees, got %d", info.Size(), len(records))
	}
	roots := make(map[string]tree.Node, len(records))
	for _, dim := range info.Dimensions() {
		recs, ok := records[dim]
		if !ok {
			return nil, errors.Wrapf(errors.ErrCorruptModel, "missing tree for dimension %s", dim)
		}
		root, err := tree.Build(recs)
		if err != nil {
			return nil, err
		}
		roots[dim] = root
	}
	return NewIndependentModel(name, fm, info, roots)
}
