// Package dataset defines the immutable feature and output indexes and
// the sparse, weighted examples consumed by the tree trainers. Index
// construction (feature/output id assignment) happens here, upstream of
// training; the trainers treat everything in this package as read-only.
package dataset

import (
	"sort"

	"github.com/gocart-ml/gocart/pkg/errors"
)

// Feature is a named numeric value. Absent features are implicitly zero.
type Feature struct {
	Name  string
	Value float64
}

// Example is a sparse feature vector with an optional output and a
// non-negative weight. Examples are immutable once training starts.
type Example struct {
	Features []Feature
	Output   Output // nil when the output is unknown
	Weight   float64
}

// NewExample returns an example with weight 1.
func NewExample(features []Feature, output Output) *Example {
	return &Example{Features: features, Output: output, Weight: 1.0}
}

// NewWeightedExample returns an example with the given weight.
func NewWeightedExample(features []Feature, output Output, weight float64) *Example {
	return &Example{Features: features, Output: output, Weight: weight}
}

// FeatureMap is an immutable feature name to id index. Ids are assigned
// in lexicographic name order so a given feature set always produces
// the same mapping.
type FeatureMap struct {
	names []string
	ids   map[string]int
}

// NewFeatureMap builds a feature index from the given names.
func NewFeatureMap(names []string) (*FeatureMap, error) {
	if len(names) == 0 {
		return nil, errors.NewValueError("NewFeatureMap", "at least one feature is required")
	}
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	ids := make(map[string]int, len(sorted))
	for i, n := range sorted {
		if _, ok := ids[n]; ok {
			return nil, errors.NewValueError("NewFeatureMap", "duplicate feature "+n)
		}
		ids[n] = i
	}
	return &FeatureMap{names: sorted, ids: ids}, nil
}

// Size returns the number of features in the domain.
func (m *FeatureMap) Size() int { return len(m.names) }

// ID returns the id for a feature name.
func (m *FeatureMap) ID(name string) (int, bool) {
	id, ok := m.ids[name]
	return id, ok
}

// Name returns the feature name for an id.
func (m *FeatureMap) Name(id int) string { return m.names[id] }

// Names returns all feature names in id order.
func (m *FeatureMap) Names() []string {
	return append([]string(nil), m.names...)
}

// SparseVector is an example projected onto a feature domain: id-sorted
// (id, value) pairs restricted to features the domain knows about.
type SparseVector struct {
	IDs    []int
	Values []float64
}

// NewSparseVector projects an example onto the feature map. Features
// absent from the map are dropped; a duplicate feature name keeps the
// last observed value.
func NewSparseVector(e *Example, m *FeatureMap) SparseVector {
	byID := make(map[int]float64, len(e.Features))
	for _, f := range e.Features {
		if id, ok := m.ids[f.Name]; ok {
			byID[id] = f.Value
		}
	}
	ids := make([]int, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	values := make([]float64, len(ids))
	for i, id := range ids {
		values[i] = byID[id]
	}
	return SparseVector{IDs: ids, Values: values}
}

// Get returns the value for a feature id, or 0 when absent.
func (v SparseVector) Get(id int) float64 {
	i := sort.SearchInts(v.IDs, id)
	if i < len(v.IDs) && v.IDs[i] == id {
		return v.Values[i]
	}
	return 0
}

// NumActive returns the number of stored features.
func (v SparseVector) NumActive() int { return len(v.IDs) }

// Dataset is an ordered collection of examples over fixed feature and
// output domains.
type Dataset struct {
	featureMap *FeatureMap
	outputInfo OutputInfo
	examples   []*Example
}

// New returns an empty dataset over the given domains.
func New(m *FeatureMap, info OutputInfo) *Dataset {
	return &Dataset{featureMap: m, outputInfo: info}
}

// Add appends an example.
func (d *Dataset) Add(e *Example) {
	d.examples = append(d.examples, e)
}

// Size returns the number of examples.
func (d *Dataset) Size() int { return len(d.examples) }

// Example returns the i-th example.
func (d *Dataset) Example(i int) *Example { return d.examples[i] }

// FeatureMap returns the feature domain.
func (d *Dataset) FeatureMap() *FeatureMap { return d.featureMap }

// OutputInfo returns the output domain.
func (d *Dataset) OutputInfo() OutputInfo { return d.outputInfo }

// UnknownCount returns the number of examples whose output is nil or
// outside the output domain. Supervised trainers reject datasets where
// this is non-zero.
func (d *Dataset) UnknownCount() int {
	unknown := 0
	for _, e := range d.examples {
		if e.Output == nil || !d.outputInfo.Contains(e.Output) {
			unknown++
		}
	}
	return unknown
}

// TotalWeight returns the sum of example weights.
func (d *Dataset) TotalWeight() float64 {
	sum := 0.0
	for _, e := range d.examples {
		sum += e.Weight
	}
	return sum
}
