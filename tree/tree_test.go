package tree

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gocart-ml/gocart/dataset"
	"github.com/gocart-ml/gocart/pkg/errors"
)

func buildRegressionDataset(t *testing.T, values []float64, targets []float64) *dataset.Dataset {
	t.Helper()
	fm, err := dataset.NewFeatureMap([]string{"f"})
	assert.NoError(t, err)
	info, err := dataset.NewRegressionInfo([]string{"y"})
	assert.NoError(t, err)
	ds := dataset.New(fm, info)
	for i, v := range values {
		ds.Add(dataset.NewExample(
			[]dataset.Feature{{Name: "f", Value: v}},
			dataset.NewRegressor("y", targets[i]),
		))
	}
	return ds
}

func TestMergeSorted(t *testing.T) {
	first := newIntBuffer(4)
	second := newIntBuffer(4)

	merged := mergeSorted([][]int{{1, 5, 9}, {2, 3}, {7}}, first, second)
	assert.Equal(t, []int{1, 2, 3, 5, 7, 9}, merged)

	assert.Equal(t, []int{}, mergeSorted(nil, first, second))
	assert.Equal(t, []int{4}, mergeSorted([][]int{{4}}, first, second))
}

func TestInvertRegressionData(t *testing.T) {
	ds := buildRegressionDataset(t, []float64{2, 1, 2, 3}, []float64{10, 20, 30, 40})

	inv, err := InvertRegressionData(ds)
	assert.NoError(t, err)
	assert.Len(t, inv.Features, 1)
	assert.Equal(t, []int{0, 1, 2, 3}, inv.Indices)
	assert.Equal(t, []float64{10, 20, 30, 40}, inv.Targets[0])

	groups := inv.Features[0].Groups()
	assert.Len(t, groups, 3, "three distinct values")
	assert.Equal(t, 1.0, groups[0].Value)
	assert.Equal(t, []int{1}, groups[0].Indices())
	assert.Equal(t, 2.0, groups[1].Value)
	assert.Equal(t, []int{0, 2}, groups[1].Indices())
	assert.Equal(t, 3.0, groups[2].Value)
}

func TestInvertObservesImplicitZeros(t *testing.T) {
	fm, _ := dataset.NewFeatureMap([]string{"a", "b"})
	info, _ := dataset.NewRegressionInfo([]string{"y"})
	ds := dataset.New(fm, info)
	ds.Add(dataset.NewExample([]dataset.Feature{{Name: "a", Value: 1}}, dataset.NewRegressor("y", 1)))
	ds.Add(dataset.NewExample([]dataset.Feature{{Name: "b", Value: 2}}, dataset.NewRegressor("y", 2)))

	inv, err := InvertRegressionData(ds)
	assert.NoError(t, err)

	// Feature "a" sees value 1 at example 0 and an implicit 0 at example 1.
	groupsA := inv.Features[0].Groups()
	assert.Len(t, groupsA, 2)
	assert.Equal(t, 0.0, groupsA[0].Value)
	assert.Equal(t, []int{1}, groupsA[0].Indices())
	assert.Equal(t, []int{0}, groupsA[1].Indices())
}

func TestInvertRejectsUnknownOutputs(t *testing.T) {
	fm, _ := dataset.NewFeatureMap([]string{"f"})
	info, _ := dataset.NewRegressionInfo([]string{"y"})
	ds := dataset.New(fm, info)
	ds.Add(dataset.NewExample([]dataset.Feature{{Name: "f", Value: 1}}, nil))

	_, err := InvertRegressionData(ds)
	assert.Error(t, err)

	_, err = InvertRegressionData(dataset.New(fm, info))
	assert.ErrorIs(t, err, errors.ErrEmptyData)
}

func TestTreeFeatureSplit(t *testing.T) {
	f := NewTreeFeature(0)
	values := []float64{5, 1, 5, 3, 1, 7}
	for i, v := range values {
		f.ObserveValue(v, i)
	}
	f.Sort()

	first := newIntBuffer(8)
	second := newIntBuffer(8)
	left, right := f.Split([]int{1, 3, 4}, []int{0, 2, 5}, first, second)

	// Left branch holds values 1 (examples 1,4) and 3 (example 3).
	assert.Len(t, left.Groups(), 2)
	assert.Equal(t, 1.0, left.Groups()[0].Value)
	assert.Equal(t, []int{1, 4}, left.Groups()[0].Indices())
	assert.Equal(t, []int{3}, left.Groups()[1].Indices())

	// Right branch holds values 5 (examples 0,2) and 7 (example 5).
	assert.Len(t, right.Groups(), 2)
	assert.Equal(t, []int{0, 2}, right.Groups()[0].Indices())
	assert.Equal(t, []int{5}, right.Groups()[1].Indices())
}

func TestTreeFeatureSplitSingleValue(t *testing.T) {
	f := NewTreeFeature(0)
	for i := 0; i < 4; i++ {
		f.ObserveValue(2.0, i)
	}
	f.Sort()

	first := newIntBuffer(8)
	second := newIntBuffer(8)
	left, right := f.Split([]int{0, 1}, []int{2, 3}, first, second)
	assert.Equal(t, []int{0, 1}, left.Groups()[0].Indices())
	assert.Equal(t, []int{2, 3}, right.Groups()[0].Indices())
}

func handBuiltTree() Node {
	// f0 <= 2.0 ? (f1 <= 1.0 ? leafA : leafB) : leafC
	leafA := NewLeafNode(0, dataset.NewRegressor("y", 1), nil, 2)
	leafB := NewLeafNode(0, dataset.NewRegressor("y", 2), nil, 2)
	leafC := NewLeafNode(0, dataset.NewRegressor("y", 3), nil, 4)
	inner := NewSplitNode(1, 1.0, 0.5, leafA, leafB)
	return NewSplitNode(0, 2.0, 1.0, inner, leafC)
}

func TestTraverse(t *testing.T) {
	root := handBuiltTree()

	leaf := Traverse(root, dataset.SparseVector{IDs: []int{0, 1}, Values: []float64{1, 3}})
	out := leaf.Output().(dataset.Regressor)
	assert.Equal(t, 2.0, out.Values[0])

	leaf = Traverse(root, dataset.SparseVector{IDs: []int{0}, Values: []float64{5}})
	out = leaf.Output().(dataset.Regressor)
	assert.Equal(t, 3.0, out.Values[0])

	// Absent features read as zero, routing left at both splits.
	leaf = Traverse(root, dataset.SparseVector{IDs: []int{3}, Values: []float64{9}})
	out = leaf.Output().(dataset.Regressor)
	assert.Equal(t, 1.0, out.Values[0])
}

func TestDepthAndCount(t *testing.T) {
	root := handBuiltTree()
	assert.Equal(t, 2, Depth(root))
	assert.Equal(t, 5, CountNodes(root))
	assert.Equal(t, 0, Depth(NewLeafNode(0, dataset.NewRegressor("y", 1), nil, 1)))
}

func TestModelPredictAndFeatures(t *testing.T) {
	fm, _ := dataset.NewFeatureMap([]string{"a", "b"})
	info, _ := dataset.NewRegressionInfo([]string{"y"})
	m := NewModel("cart-tree", fm, info, handBuiltTree())

	pred, err := m.Predict(dataset.NewExample([]dataset.Feature{{Name: "a", Value: 3}}, nil))
	assert.NoError(t, err)
	assert.Equal(t, 1, pred.NumActiveFeatures)
	assert.Equal(t, 3.0, pred.Output.(dataset.Regressor).Values[0])

	_, err = m.Predict(dataset.NewExample([]dataset.Feature{{Name: "unknown", Value: 1}}, nil))
	assert.Error(t, err, "no feature overlap must be rejected")

	assert.Equal(t, []string{"a", "b"}, m.Features())

	top := m.TopFeatures(-1)
	assert.Len(t, top, 2)
	assert.Equal(t, "a", top[0].Name)
	assert.Equal(t, 1.0, top[0].Score)

	assert.Len(t, m.TopFeatures(1), 1)
	assert.Equal(t, 2, m.Depth())
}

func TestFlattenBuildRoundTrip(t *testing.T) {
	root := handBuiltTree()
	records := Flatten(root)
	assert.Len(t, records, 5)
	assert.False(t, records[0].Leaf)

	rebuilt, err := Build(records)
	assert.NoError(t, err)
	assert.Equal(t, 2, Depth(rebuilt))
	assert.Equal(t, 5, CountNodes(rebuilt))

	vec := dataset.SparseVector{IDs: []int{0, 1}, Values: []float64{1, 3}}
	assert.Equal(t,
		Traverse(root, vec).Output().(dataset.Regressor).Values[0],
		Traverse(rebuilt, vec).Output().(dataset.Regressor).Values[0])
}

func TestExportImportRoundTrip(t *testing.T) {
	fm, _ := dataset.NewFeatureMap([]string{"a", "b"})
	info, _ := dataset.NewRegressionInfo([]string{"y"})
	m := NewModel("cart-tree", fm, info, handBuiltTree())

	var buf bytes.Buffer
	assert.NoError(t, m.Export(&buf))

	restored, err := Import(&buf)
	assert.NoError(t, err)
	assert.Equal(t, "cart-tree", restored.Name())
	assert.Equal(t, 2, restored.Depth())

	example := dataset.NewExample([]dataset.Feature{{Name: "a", Value: 1}, {Name: "b", Value: 3}}, nil)
	want, err := m.Predict(example)
	assert.NoError(t, err)
	got, err := restored.Predict(example)
	assert.NoError(t, err)
	assert.Equal(t, want.Output, got.Output)

	_, err = Import(bytes.NewBufferString("{not json"))
	assert.ErrorIs(t, err, errors.ErrCorruptModel)
}

func TestBuildRejectsCorruptRecords(t *testing.T) {
	_, err := Build(nil)
	assert.ErrorIs(t, err, errors.ErrCorruptModel)

	// Child offset pointing backwards.
	_, err = Build([]Record{
		{Feature: 0, Threshold: 1, LessOrEqual: 0, Greater: 1},
		{Leaf: true},
	})
	assert.ErrorIs(t, err, errors.ErrCorruptModel)

	// Child offset past the end of the list.
	_, err = Build([]Record{
		{Feature: 0, Threshold: 1, LessOrEqual: 1, Greater: 5},
		{Leaf: true},
	})
	assert.ErrorIs(t, err, errors.ErrCorruptModel)
}
