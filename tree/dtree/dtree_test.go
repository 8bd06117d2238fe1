package dtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	"github.com/gocart-ml/gocart/dataset"
	"github.com/gocart-ml/gocart/pkg/errors"
	"github.com/gocart-ml/gocart/tree"
)

func labelDataset(t *testing.T, values []float64, labels []string) *dataset.Dataset {
	t.Helper()
	fm, err := dataset.NewFeatureMap([]string{"x"})
	assert.NoError(t, err)

	distinct := map[string]bool{}
	var domain []string
	for _, l := range labels {
		if !distinct[l] {
			distinct[l] = true
			domain = append(domain, l)
		}
	}
	info, err := dataset.NewLabelInfo(domain)
	assert.NoError(t, err)

	ds := dataset.New(fm, info)
	for i, v := range values {
		ds.Add(dataset.NewExample([]dataset.Feature{{Name: "x", Value: v}}, dataset.NewLabel(labels[i])))
	}
	return ds
}

func TestGiniIndex(t *testing.T) {
	g := GiniIndex{}
	assert.InDelta(t, 0.5, g.Impurity([]float64{2, 2}), 1e-12)
	assert.Equal(t, 0.0, g.Impurity([]float64{4, 0}))
	assert.Equal(t, 0.0, g.Impurity([]float64{0, 0}))
	assert.InDelta(t, 2.0, g.ImpurityWeighted([]float64{2, 2}), 1e-12)
}

func TestEntropy(t *testing.T) {
	e := Entropy{}
	assert.InDelta(t, 0.6931471805599453, e.Impurity([]float64{2, 2}), 1e-12)
	assert.Equal(t, 0.0, e.Impurity([]float64{4, 0}))
	assert.InDelta(t, 4*0.6931471805599453, e.ImpurityWeighted([]float64{2, 2}), 1e-9)
}

func TestSeparableClassesSingleSplit(t *testing.T) {
	ds := labelDataset(t, []float64{1, 2, 3, 4}, []string{"a", "a", "b", "b"})

	trainer, err := NewTrainer(tree.Params{MinChildWeight: 1}, GiniIndex{})
	assert.NoError(t, err)
	m, err := trainer.Train(ds)
	assert.NoError(t, err)

	assert.Equal(t, 1, m.Depth(), "one split separates the classes")
	root := m.Root().(*tree.SplitNode)
	assert.Equal(t, 2.5, root.Threshold())
	assert.Equal(t, 0.0, root.LessOrEqual().Impurity())
	assert.Equal(t, 0.0, root.Greater().Impurity())

	pred, err := m.Predict(dataset.NewExample([]dataset.Feature{{Name: "x", Value: 1.5}}, nil))
	assert.NoError(t, err)
	assert.Equal(t, "a", pred.Output.(dataset.Label).Name)
	assert.Equal(t, 1.0, pred.Distribution["a"])

	pred, err = m.Predict(dataset.NewExample([]dataset.Feature{{Name: "x", Value: 10}}, nil))
	assert.NoError(t, err)
	assert.Equal(t, "b", pred.Output.(dataset.Label).Name)
}

func TestConstantFeatureMakesLeaf(t *testing.T) {
	ds := labelDataset(t, []float64{7, 7, 7, 7}, []string{"a", "a", "a", "b"})

	trainer, err := NewTrainer(tree.Params{MinChildWeight: 1}, GiniIndex{})
	assert.NoError(t, err)
	m, err := trainer.Train(ds)
	assert.NoError(t, err)

	assert.Equal(t, 0, m.Depth(), "a constant feature cannot be split")
	leaf := m.Root().(*tree.LeafNode)
	assert.Equal(t, "a", leaf.Output().(dataset.Label).Name)
	assert.InDelta(t, 0.75, leaf.Distribution()["a"], 1e-12)
	assert.InDelta(t, 0.25, leaf.Distribution()["b"], 1e-12)
}

func TestWeightsDecideMajority(t *testing.T) {
	fm, _ := dataset.NewFeatureMap([]string{"x"})
	info, _ := dataset.NewLabelInfo([]string{"a", "b"})
	ds := dataset.New(fm, info)
	ds.Add(dataset.NewWeightedExample([]dataset.Feature{{Name: "x", Value: 1}}, dataset.NewLabel("a"), 1))
	ds.Add(dataset.NewWeightedExample([]dataset.Feature{{Name: "x", Value: 1}}, dataset.NewLabel("a"), 1))
	ds.Add(dataset.NewWeightedExample([]dataset.Feature{{Name: "x", Value: 1}}, dataset.NewLabel("b"), 5))

	trainer, _ := NewTrainer(tree.Params{MinChildWeight: 1}, GiniIndex{})
	m, err := trainer.Train(ds)
	assert.NoError(t, err)

	leaf := m.Root().(*tree.LeafNode)
	assert.Equal(t, "b", leaf.Output().(dataset.Label).Name)
	assert.InDelta(t, 5.0/7.0, leaf.Output().(dataset.Label).Score, 1e-12)
	assert.InDelta(t, 7.0, leaf.WeightSum(), 1e-12)
}

func TestMinImpurityDecreaseBlocksSplit(t *testing.T) {
	ds := labelDataset(t, []float64{1, 2, 3, 4}, []string{"a", "a", "b", "b"})

	trainer, err := NewTrainer(tree.Params{MinChildWeight: 1, MinImpurityDecrease: 10}, GiniIndex{})
	assert.NoError(t, err)
	m, err := trainer.Train(ds)
	assert.NoError(t, err)
	assert.Equal(t, 0, m.Depth())
}

func TestMaxDepthBound(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	labels := []string{"a", "b", "a", "b", "a", "b", "a", "b"}
	ds := labelDataset(t, values, labels)

	trainer, err := NewTrainer(tree.Params{MaxDepth: 2, MinChildWeight: 1}, GiniIndex{})
	assert.NoError(t, err)
	m, err := trainer.Train(ds)
	assert.NoError(t, err)
	assert.LessOrEqual(t, m.Depth(), 2)
}

func TestTrainRejectsUnknownOutputs(t *testing.T) {
	fm, _ := dataset.NewFeatureMap([]string{"x"})
	info, _ := dataset.NewLabelInfo([]string{"a"})
	ds := dataset.New(fm, info)
	ds.Add(dataset.NewExample([]dataset.Feature{{Name: "x", Value: 1}}, dataset.NewLabel("zzz")))

	trainer, _ := NewTrainer(tree.Params{}, nil)
	_, err := trainer.Train(ds)
	assert.Error(t, err)

	var modelErr *errors.ModelError
	assert.True(t, errors.As(err, &modelErr))
}

func TestTrainRejectsEmptyDataset(t *testing.T) {
	fm, _ := dataset.NewFeatureMap([]string{"x"})
	info, _ := dataset.NewLabelInfo([]string{"a"})

	trainer, _ := NewTrainer(tree.Params{}, nil)
	_, err := trainer.Train(dataset.New(fm, info))
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestInvalidParams(t *testing.T) {
	_, err := NewTrainer(tree.Params{FractionFeaturesInSplit: 1.5}, nil)
	assert.Error(t, err)

	_, err = NewTrainer(tree.Params{MinImpurityDecrease: -1}, nil)
	assert.Error(t, err)

	_, err = NewTrainer(tree.Params{MaxDepth: -2}, nil)
	assert.Error(t, err)
}

func TestInvocationCountReplay(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	labels := []string{"a", "a", "b", "b", "a", "b", "a", "b"}
	ds := labelDataset(t, values, labels)
	p := tree.Params{MinChildWeight: 1, UseRandomSplitPoints: true, Seed: 99}

	first, err := NewTrainer(p, GiniIndex{})
	assert.NoError(t, err)
	_, err = first.Train(ds)
	assert.NoError(t, err)
	secondRun, err := first.Train(ds)
	assert.NoError(t, err)
	assert.Equal(t, 2, first.InvocationCount())

	replayed, err := NewTrainer(p, GiniIndex{})
	assert.NoError(t, err)
	assert.NoError(t, replayed.SetInvocationCount(1))
	replayedRun, err := replayed.Train(ds)
	assert.NoError(t, err)

	assert.Equal(t, tree.Flatten(secondRun.Root()), tree.Flatten(replayedRun.Root()),
		"replaying the fork sequence must rebuild the same tree")
}

func TestCARTClassifierFitPredict(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	labels := []string{"a", "a", "b", "b"}

	clf := NewCARTClassifier(tree.Params{MinChildWeight: 1}, nil)

	_, err := clf.Predict(X)
	var notFitted *errors.NotFittedError
	assert.True(t, errors.As(err, &notFitted))

	assert.NoError(t, clf.Fit(X, labels))
	assert.True(t, clf.IsFitted())

	preds, err := clf.Predict(mat.NewDense(2, 1, []float64{1.5, 3.5}))
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, preds)

	probs, err := clf.PredictProba(mat.NewDense(1, 1, []float64{1.5}))
	assert.NoError(t, err)
	assert.Equal(t, 1.0, probs[0]["a"])

	_, err = clf.Predict(mat.NewDense(1, 2, []float64{1, 2}))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}
