package rtree

import (
	"time"

	"github.com/gocart-ml/gocart/core/parallel"
	"github.com/gocart-ml/gocart/dataset"
	"github.com/gocart-ml/gocart/pkg/errors"
	"github.com/gocart-ml/gocart/pkg/log"
	"github.com/gocart-ml/gocart/pkg/rng"
	"github.com/gocart-ml/gocart/tree"
)

// Trainer grows one regression tree per output dimension. Dimension
// builds share the inverted index read-only and are distributed over a
// worker pool; each dimension gets its own RNG stream forked in
// dimension-id order, so the result does not depend on the degree of
// parallelism.
type Trainer struct {
	core     *tree.TrainerCore
	impurity RegressorImpurity
}

// NewTrainer constructs an independent-mode regression trainer. A nil
// impurity defaults to MeanSquaredError.
func NewTrainer(p tree.Params, impurity RegressorImpurity) (*Trainer, error) {
	if impurity == nil {
		impurity = MeanSquaredError{}
	}
	core, err := tree.NewTrainerCore(p)
	if err != nil {
		return nil, err
	}
	return &Trainer{core: core, impurity: impurity}, nil
}

// Params returns the defaulted growth parameters.
func (t *Trainer) Params() tree.Params { return t.core.Params() }

// InvocationCount returns the number of completed Train calls.
func (t *Trainer) InvocationCount() int { return t.core.InvocationCount() }

// SetInvocationCount rewinds the trainer's RNG to the state after count
// Train calls.
func (t *Trainer) SetInvocationCount(count int) error {
	return t.core.SetInvocationCount(count)
}

// Train grows one tree per output dimension over the dataset. The
// dataset must be non-empty, hold Regressor outputs and contain no
// unknown outputs.
func (t *Trainer) Train(ds *dataset.Dataset) (*IndependentModel, error) {
	start := time.Now()

	inv, err := tree.InvertRegressionData(ds)
	if err != nil {
		return nil, errors.NewModelError("Train", "regression tree", err)
	}
	info := ds.OutputInfo().(*dataset.RegressionInfo)

	localRNG, _ := t.core.ForkRNG()
	p := t.core.Params()
	determiner := tree.LeafDeterminer{
		MaxDepth:                  p.MaxDepth,
		MinChildWeight:            p.MinChildWeight,
		ScaledMinImpurityDecrease: p.MinImpurityDecrease * ds.TotalWeight(),
	}

	// Fork one stream per dimension up front, in id order, then hand
	// the builds to the pool.
	numDims := info.Size()
	dimRNGs := make([]*rng.Splittable, numDims)
	for d := range dimRNGs {
		dimRNGs[d] = localRNG.Split()
	}

	numFeatures := ds.FeatureMap().Size()
	converted := make([]tree.Node, numDims)
	parallel.ForEach(numDims, func(d int) {
		root := newRootNode(inv, d, info.Dimension(d), t.impurity, determiner)
		tree.Grow(root, p, numFeatures, dimRNGs[d])
		converted[d] = root.Convert()
	})

	roots := make(map[string]tree.Node, numDims)
	for d, dim := range info.Dimensions() {
		roots[dim] = converted[d]
	}
	model, err := NewIndependentModel("cart-regression-tree", ds.FeatureMap(), info, roots)
	if err != nil {
		return nil, err
	}

	log.GetLogger().Info("trained independent regression trees",
		log.ModelNameKey, model.Name(),
		log.SamplesKey, ds.Size(),
		log.FeaturesKey, numFeatures,
		log.OutputsKey, numDims,
		log.DepthKey, model.Depth(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return model, nil
}

// JointTrainer grows a single tree over every output dimension at
// once, scoring splits by impurity averaged across dimensions.
type JointTrainer struct {
	core     *tree.TrainerCore
	impurity RegressorImpurity

	// Normalize rescales each leaf's mean vector to sum to one, for
	// targets that represent proportions.
	normalize bool
}

// NewJointTrainer constructs a joint-mode regression trainer. A nil
// impurity defaults to MeanSquaredError.
func NewJointTrainer(p tree.Params, impurity RegressorImpurity, normalize bool) (*JointTrainer, error) {
	if impurity == nil {
		impurity = MeanSquaredError{}
	}
	core, err := tree.NewTrainerCore(p)
	if err != nil {
		return nil, err
	}
	return &JointTrainer{core: core, impurity: impurity, normalize: normalize}, nil
}

// Params returns the defaulted growth parameters.
func (t *JointTrainer) Params() tree.Params { return t.core.Params() }

// InvocationCount returns the number of completed Train calls.
func (t *JointTrainer) InvocationCount() int { return t.core.InvocationCount() }

// SetInvocationCount rewinds the trainer's RNG to the state after count
// Train calls.
func (t *JointTrainer) SetInvocationCount(count int) error {
	return t.core.SetInvocationCount(count)
}

// Train grows a single joint tree over the dataset.
func (t *JointTrainer) Train(ds *dataset.Dataset) (*tree.Model, error) {
	start := time.Now()

	inv, err := tree.InvertRegressionData(ds)
	if err != nil {
		return nil, errors.NewModelError("Train", "joint regression tree", err)
	}
	info := ds.OutputInfo().(*dataset.RegressionInfo)

	localRNG, _ := t.core.ForkRNG()
	p := t.core.Params()
	determiner := tree.LeafDeterminer{
		MaxDepth:                  p.MaxDepth,
		MinChildWeight:            p.MinChildWeight,
		ScaledMinImpurityDecrease: p.MinImpurityDecrease * ds.TotalWeight(),
	}

	root := newJointRootNode(inv, info, t.impurity, t.normalize, determiner)
	tree.Grow(root, p, ds.FeatureMap().Size(), localRNG)
	model := tree.NewModel("cart-joint-regression-tree", ds.FeatureMap(), info, root.Convert())

	log.GetLogger().Info("trained joint regression tree",
		log.ModelNameKey, model.Name(),
		log.SamplesKey, ds.Size(),
		log.FeaturesKey, ds.FeatureMap().Size(),
		log.OutputsKey, info.Size(),
		log.DepthKey, model.Depth(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return model, nil
}
