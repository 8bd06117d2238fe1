package dtree

import (
	"time"

	"github.com/gocart-ml/gocart/dataset"
	"github.com/gocart-ml/gocart/pkg/errors"
	"github.com/gocart-ml/gocart/pkg/log"
	"github.com/gocart-ml/gocart/tree"
)

// Trainer trains CART classification trees. A Trainer is safe for
// concurrent Train calls; each call forks its own RNG stream.
type Trainer struct {
	core     *tree.TrainerCore
	impurity LabelImpurity
}

// NewTrainer constructs a trainer from growth parameters and an
// impurity measure. A nil impurity defaults to GiniIndex.
func NewTrainer(p tree.Params, impurity LabelImpurity) (*Trainer, error) {
	if impurity == nil {
		impurity = GiniIndex{}
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

// Train grows a classification tree over the dataset. The dataset must
// be non-empty, hold Label outputs and contain no unknown outputs.
func (t *Trainer) Train(ds *dataset.Dataset) (*tree.Model, error) {
	start := time.Now()

	inv, err := tree.InvertClassificationData(ds)
	if err != nil {
		return nil, errors.NewModelError("Train", "classification tree", err)
	}
	labelInfo := ds.OutputInfo().(*dataset.LabelInfo)

	localRNG, _ := t.core.ForkRNG()
	p := t.core.Params()
	determiner := tree.LeafDeterminer{
		MaxDepth:                  p.MaxDepth,
		MinChildWeight:            p.MinChildWeight,
		ScaledMinImpurityDecrease: p.MinImpurityDecrease * ds.TotalWeight(),
	}

	root := newRootNode(inv, labelInfo, t.impurity, determiner)
	tree.Grow(root, p, ds.FeatureMap().Size(), localRNG)
	model := tree.NewModel("cart-classification-tree", ds.FeatureMap(), labelInfo, root.Convert())

	log.GetLogger().Info("trained classification tree",
		log.ModelNameKey, model.Name(),
		log.SamplesKey, ds.Size(),
		log.FeaturesKey, ds.FeatureMap().Size(),
		log.DepthKey, model.Depth(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return model, nil
}
