package tree

import (
	"sort"

	"github.com/gocart-ml/gocart/dataset"
	"github.com/gocart-ml/gocart/pkg/errors"
)

// InvertedFeature records every example index at which one feature takes
// one particular value. Indices are kept sorted ascending; the split
// routine depends on that ordering.
type InvertedFeature struct {
	Value   float64
	indices []int
}

// NewInvertedFeature constructs an inverted feature over a sorted index
// slice.
func NewInvertedFeature(value float64, indices []int) *InvertedFeature {
	return &InvertedFeature{Value: value, indices: indices}
}

func (f *InvertedFeature) add(index int) {
	f.indices = append(f.indices, index)
}

// Indices returns the sorted example indices where this value occurs.
func (f *InvertedFeature) Indices() []int { return f.indices }

// Count returns the number of occurrences of this value.
func (f *InvertedFeature) Count() int { return len(f.indices) }

// split partitions this feature's indices against the sorted index set
// in allLeft. Indices present in allLeft go to the left result, the
// rest to the right. Indices in allLeft but not in this feature are
// written to buffer, which becomes the remaining left set for the next
// feature value. Either result may be nil when empty.
func (f *InvertedFeature) split(allLeft, buffer *intBuffer) (left, right *InvertedFeature) {
	var leftIdx, rightIdx []int

	bufferIdx := 0
	j := 0
	for _, idx := range f.indices {
		for j < allLeft.size && allLeft.data[j] < idx {
			buffer.data[bufferIdx] = allLeft.data[j]
			bufferIdx++
			j++
		}
		if j < allLeft.size && allLeft.data[j] == idx {
			leftIdx = append(leftIdx, idx)
			j++
		} else {
			rightIdx = append(rightIdx, idx)
		}
	}
	if j < allLeft.size {
		copy(buffer.data[bufferIdx:], allLeft.data[j:allLeft.size])
	}
	buffer.size = bufferIdx + (allLeft.size - j)
	allLeft.size = 0

	if len(leftIdx) > 0 {
		left = &InvertedFeature{Value: f.Value, indices: leftIdx}
	}
	if len(rightIdx) > 0 {
		right = &InvertedFeature{Value: f.Value, indices: rightIdx}
	}
	return left, right
}

// TreeFeature groups all distinct values of one feature, ascending by
// value, each with the sorted example indices where it occurs.
type TreeFeature struct {
	ID     int
	groups []*InvertedFeature

	valueMap map[float64]*InvertedFeature
	sorted   bool
}

// NewTreeFeature constructs an empty tree feature for the given id.
func NewTreeFeature(id int) *TreeFeature {
	return &TreeFeature{
		ID:       id,
		valueMap: make(map[float64]*InvertedFeature),
		sorted:   true,
	}
}

func newSplitTreeFeature(id int, groups []*InvertedFeature) *TreeFeature {
	return &TreeFeature{ID: id, groups: groups, sorted: true}
}

// Groups returns the value groups in ascending value order.
func (t *TreeFeature) Groups() []*InvertedFeature { return t.groups }

// ObserveValue records that example exampleID has the given value for
// this feature. Example ids must be observed in ascending order.
func (t *TreeFeature) ObserveValue(value float64, exampleID int) {
	g, ok := t.valueMap[value]
	if !ok {
		g = &InvertedFeature{Value: value, indices: []int{exampleID}}
		t.valueMap[value] = g
		t.groups = append(t.groups, g)
		t.sorted = false
	} else {
		g.add(exampleID)
	}
}

// Sort orders the value groups ascending by value. Must be called after
// all observations and before Split.
func (t *TreeFeature) Sort() {
	sort.Slice(t.groups, func(i, j int) bool {
		return t.groups[i].Value < t.groups[j].Value
	})
	t.sorted = true
}

// Split partitions this feature into the left and right branch features
// given the sorted index sets routed to each branch.
func (t *TreeFeature) Split(leftIndices, rightIndices []int, first, second *intBuffer) (left, right *TreeFeature) {
	if !t.sorted {
		panic("tree: feature must be sorted before Split")
	}

	if len(t.groups) == 1 {
		value := t.groups[0].Value
		return newSplitTreeFeature(t.ID, []*InvertedFeature{{Value: value, indices: leftIndices}}),
			newSplitTreeFeature(t.ID, []*InvertedFeature{{Value: value, indices: rightIndices}})
	}

	var leftGroups, rightGroups []*InvertedFeature
	first.fill(leftIndices)
	second.grow(len(leftIndices))
	for _, g := range t.groups {
		if first.size > 0 {
			l, r := g.split(first, second)
			first, second = second, first
			if l != nil {
				leftGroups = append(leftGroups, l)
			}
			if r != nil {
				rightGroups = append(rightGroups, r)
			}
		} else {
			rightGroups = append(rightGroups, g)
		}
	}
	return newSplitTreeFeature(t.ID, leftGroups), newSplitTreeFeature(t.ID, rightGroups)
}

// InvertedData is the sort-once inverted index over a dataset: one
// TreeFeature per feature id, plus the per-example weights and outputs
// shared by every node of the growing tree.
type InvertedData struct {
	Features []*TreeFeature
	Indices  []int
	Weights  []float64

	// Targets holds regression targets as [dimension][example].
	// Nil for classification data.
	Targets [][]float64
	// Labels holds the label id per example. Nil for regression data.
	Labels []int
}

// InvertRegressionData builds the inverted index for a regression
// dataset. Features absent from an example are observed as zero, so
// every feature sees every example exactly once. The dataset must not
// contain unknown outputs.
func InvertRegressionData(ds *dataset.Dataset) (*InvertedData, error) {
	info, ok := ds.OutputInfo().(*dataset.RegressionInfo)
	if !ok {
		return nil, errors.NewValueError("InvertRegressionData", "dataset does not hold regression outputs")
	}
	if ds.Size() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "InvertRegressionData")
	}
	if n := ds.UnknownCount(); n > 0 {
		return nil, errors.NewValueError("InvertRegressionData", "dataset contains examples with unknown outputs")
	}

	fm := ds.FeatureMap()
	numFeatures := fm.Size()
	numDims := info.Size()
	n := ds.Size()

	inv := &InvertedData{
		Features: make([]*TreeFeature, numFeatures),
		Indices:  make([]int, n),
		Weights:  make([]float64, n),
		Targets:  make([][]float64, numDims),
	}
	for i := range inv.Features {
		inv.Features[i] = NewTreeFeature(i)
	}
	for d := range inv.Targets {
		inv.Targets[d] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		e := ds.Example(i)
		inv.Indices[i] = i
		inv.Weights[i] = e.Weight

		reg := e.Output.(dataset.Regressor)
		for j, name := range reg.Names {
			id, _ := info.ID(name)
			inv.Targets[id][i] = reg.Values[j]
		}

		observeExample(inv.Features, e, fm, i)
	}

	for _, f := range inv.Features {
		f.Sort()
	}
	return inv, nil
}

// InvertClassificationData builds the inverted index for a
// classification dataset. The dataset must not contain unknown outputs.
func InvertClassificationData(ds *dataset.Dataset) (*InvertedData, error) {
	info, ok := ds.OutputInfo().(*dataset.LabelInfo)
	if !ok {
		return nil, errors.NewValueError("InvertClassificationData", "dataset does not hold label outputs")
	}
	if ds.Size() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "InvertClassificationData")
	}
	if n := ds.UnknownCount(); n > 0 {
		return nil, errors.NewValueError("InvertClassificationData", "dataset contains examples with unknown outputs")
	}

	fm := ds.FeatureMap()
	n := ds.Size()

	inv := &InvertedData{
		Features: make([]*TreeFeature, fm.Size()),
		Indices:  make([]int, n),
		Weights:  make([]float64, n),
		Labels:   make([]int, n),
	}
	for i := range inv.Features {
		inv.Features[i] = NewTreeFeature(i)
	}

	for i := 0; i < n; i++ {
		e := ds.Example(i)
		inv.Indices[i] = i
		inv.Weights[i] = e.Weight

		label := e.Output.(dataset.Label)
		id, _ := info.ID(label.Name)
		inv.Labels[i] = id

		observeExample(inv.Features, e, fm, i)
	}

	for _, f := range inv.Features {
		f.Sort()
	}
	return inv, nil
}

// observeExample feeds one example's sparse vector into the per-feature
// index, filling in implicit zeros for absent features.
func observeExample(features []*TreeFeature, e *dataset.Example, fm *dataset.FeatureMap, exampleID int) {
	vec := dataset.NewSparseVector(e, fm)
	lastID := 0
	for k, curID := range vec.IDs {
		for j := lastID; j < curID; j++ {
			features[j].ObserveValue(0.0, exampleID)
		}
		features[curID].ObserveValue(vec.Values[k], exampleID)
		lastID = curID + 1
	}
	for j := lastID; j < len(features); j++ {
		features[j].ObserveValue(0.0, exampleID)
	}
}
