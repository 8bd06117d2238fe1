package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestFeatureMapLexicographicIDs(t *testing.T) {
	fm, err := NewFeatureMap([]string{"c", "a", "b"})
	assert.NoError(t, err)
	assert.Equal(t, 3, fm.Size())

	id, ok := fm.ID("a")
	assert.True(t, ok)
	assert.Equal(t, 0, id)
	assert.Equal(t, "c", fm.Name(2))

	_, ok = fm.ID("missing")
	assert.False(t, ok)
}

func TestFeatureMapRejectsDuplicates(t *testing.T) {
	_, err := NewFeatureMap([]string{"a", "a"})
	assert.Error(t, err)
}

func TestSparseVector(t *testing.T) {
	fm, _ := NewFeatureMap([]string{"a", "b", "c"})
	e := NewExample([]Feature{{Name: "c", Value: 3}, {Name: "a", Value: 1}, {Name: "x", Value: 9}}, nil)

	vec := NewSparseVector(e, fm)
	assert.Equal(t, 2, vec.NumActive(), "unknown feature x must be dropped")
	assert.Equal(t, []int{0, 2}, vec.IDs)
	assert.Equal(t, 1.0, vec.Get(0))
	assert.Equal(t, 0.0, vec.Get(1), "absent feature reads as zero")
	assert.Equal(t, 3.0, vec.Get(2))
}

func TestUnknownCount(t *testing.T) {
	fm, _ := NewFeatureMap([]string{"a"})
	info, _ := NewLabelInfo([]string{"pos", "neg"})
	ds := New(fm, info)

	ds.Add(NewExample([]Feature{{Name: "a", Value: 1}}, NewLabel("pos")))
	ds.Add(NewExample([]Feature{{Name: "a", Value: 2}}, nil))
	ds.Add(NewExample([]Feature{{Name: "a", Value: 3}}, NewLabel("other")))

	assert.Equal(t, 3, ds.Size())
	assert.Equal(t, 2, ds.UnknownCount())
}

func TestTotalWeight(t *testing.T) {
	fm, _ := NewFeatureMap([]string{"a"})
	info, _ := NewLabelInfo([]string{"x"})
	ds := New(fm, info)
	ds.Add(NewWeightedExample([]Feature{{Name: "a", Value: 1}}, NewLabel("x"), 2.5))
	ds.Add(NewWeightedExample([]Feature{{Name: "a", Value: 2}}, NewLabel("x"), 0.5))
	assert.InDelta(t, 3.0, ds.TotalWeight(), 1e-12)
}

func TestRegressionInfoIDOrder(t *testing.T) {
	info, err := NewRegressionInfo([]string{"y2", "y1"})
	assert.NoError(t, err)
	id, ok := info.ID("y1")
	assert.True(t, ok)
	assert.Equal(t, 0, id)
	assert.Equal(t, "y2", info.Dimension(1))
}

func TestFromRegressionMatrix(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 2,
		3, 4,
	})
	y := mat.NewDense(3, 1, []float64{10, 20, 30})

	ds, err := FromRegressionMatrix(X, []string{"f1", "f2"}, y, []string{"out"})
	assert.NoError(t, err)
	assert.Equal(t, 3, ds.Size())
	assert.Equal(t, 0, ds.UnknownCount())

	// Explicit zeros are dropped from the sparse representation.
	assert.Len(t, ds.Example(0).Features, 1)
	assert.Len(t, ds.Example(2).Features, 2)

	out := ds.Example(1).Output.(Regressor)
	v, ok := out.Value("out")
	assert.True(t, ok)
	assert.Equal(t, 20.0, v)
}

func TestFromRegressionMatrixShapeErrors(t *testing.T) {
	X := mat.NewDense(2, 2, nil)
	y := mat.NewDense(3, 1, nil)
	_, err := FromRegressionMatrix(X, []string{"a", "b"}, y, []string{"out"})
	assert.Error(t, err)
}

func TestFromClassificationMatrix(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	ds, err := FromClassificationMatrix(X, []string{"f"}, []string{"a", "a", "b", "b"})
	assert.NoError(t, err)
	assert.Equal(t, 4, ds.Size())
	assert.Equal(t, 2, ds.OutputInfo().Size())
	assert.Equal(t, 0, ds.UnknownCount())
}
