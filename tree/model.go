package tree

import (
	"sort"

	"github.com/gocart-ml/gocart/dataset"
	"github.com/gocart-ml/gocart/pkg/errors"
)

// Prediction is the result of routing one example through a tree.
type Prediction struct {
	// Output is the leaf's output estimate.
	Output dataset.Output
	// Distribution holds per-class scores for classification leaves,
	// nil otherwise.
	Distribution map[string]float64
	// NumActiveFeatures is the number of example features that were in
	// the model's feature domain.
	NumActiveFeatures int
}

// FeatureImportance is a feature name with its split count.
type FeatureImportance struct {
	Name  string
	Score float64
}

// Model is an immutable fitted decision tree over fixed feature and
// output domains. Models are safe for concurrent prediction.
type Model struct {
	name       string
	featureMap *dataset.FeatureMap
	outputInfo dataset.OutputInfo
	root       Node
}

// NewModel constructs a fitted model around a finished tree.
func NewModel(name string, fm *dataset.FeatureMap, info dataset.OutputInfo, root Node) *Model {
	return &Model{name: name, featureMap: fm, outputInfo: info, root: root}
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// FeatureMap returns the feature domain the model was trained on.
func (m *Model) FeatureMap() *dataset.FeatureMap { return m.featureMap }

// OutputInfo returns the output domain the model was trained on.
func (m *Model) OutputInfo() dataset.OutputInfo { return m.outputInfo }

// Root returns the root node.
func (m *Model) Root() Node { return m.root }

// Depth returns the number of splits on the longest root-to-leaf path.
func (m *Model) Depth() int { return Depth(m.root) }

// Predict routes an example to a leaf. It errors when the example
// shares no features with the model's feature domain.
func (m *Model) Predict(e *dataset.Example) (*Prediction, error) {
	vec := dataset.NewSparseVector(e, m.featureMap)
	if vec.NumActive() == 0 {
		return nil, errors.NewValueError("Predict", "example shares no features with the model")
	}
	leaf := Traverse(m.root, vec)
	return &Prediction{
		Output:            leaf.Output(),
		Distribution:      leaf.Distribution(),
		NumActiveFeatures: vec.NumActive(),
	}, nil
}

// TopFeatures returns the n most frequently split-on features, ranked
// by the number of split nodes testing each feature. Ties keep their
// breadth-first discovery order. n < 0 returns every splitting feature.
func (m *Model) TopFeatures(n int) []FeatureImportance {
	counts := make(map[string]int)
	var order []string

	queue := []Node{m.root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if node == nil || node.IsLeaf() {
			continue
		}
		split := node.(*SplitNode)
		name := m.featureMap.Name(split.Feature())
		if _, seen := counts[name]; !seen {
			order = append(order, name)
		}
		counts[name]++
		queue = append(queue, split.Greater(), split.LessOrEqual())
	}

	ranked := make([]FeatureImportance, 0, len(order))
	for _, name := range order {
		ranked = append(ranked, FeatureImportance{Name: name, Score: float64(counts[name])})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if n >= 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// Features returns the names of every feature the tree splits on, in
// breadth-first discovery order.
func (m *Model) Features() []string {
	var names []string
	seen := make(map[string]bool)

	queue := []Node{m.root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if node == nil || node.IsLeaf() {
			continue
		}
		split := node.(*SplitNode)
		name := m.featureMap.Name(split.Feature())
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		queue = append(queue, split.Greater(), split.LessOrEqual())
	}
	return names
}
