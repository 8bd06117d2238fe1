package tree

import (
	"math"
	"sync"

	"github.com/gocart-ml/gocart/pkg/errors"
	"github.com/gocart-ml/gocart/pkg/log"
	"github.com/gocart-ml/gocart/pkg/rng"
)

// DefaultSeed is the seed used when Params does not supply one.
const DefaultSeed int64 = 12345

// DefaultMinChildWeight is the default minimum total child weight.
const DefaultMinChildWeight = 5.0

// Params holds the growth hyperparameters shared by every trainer.
type Params struct {
	// MaxDepth is the maximum number of splits on any root-to-leaf
	// path. Zero means unlimited.
	MaxDepth int
	// MinChildWeight is the minimum total example weight a child must
	// carry for the parent to be split. Zero means the default of 5.
	MinChildWeight float64
	// MinImpurityDecrease is the minimum unscaled impurity decrease a
	// split must achieve, scaled by the dataset's total weight before
	// comparison.
	MinImpurityDecrease float64
	// FractionFeaturesInSplit is the fraction of features considered at
	// each split. Zero means all features.
	FractionFeaturesInSplit float64
	// UseRandomSplitPoints picks one split point uniformly at random
	// per candidate feature instead of scanning every boundary.
	UseRandomSplitPoints bool
	// Seed seeds the training RNG. Zero means DefaultSeed.
	Seed int64
}

// withDefaults fills zero-valued fields with their defaults.
func (p Params) withDefaults() Params {
	if p.MaxDepth == 0 {
		p.MaxDepth = math.MaxInt32
	}
	if p.MinChildWeight == 0 {
		p.MinChildWeight = DefaultMinChildWeight
	}
	if p.FractionFeaturesInSplit == 0 {
		p.FractionFeaturesInSplit = 1.0
	}
	if p.Seed == 0 {
		p.Seed = DefaultSeed
	}
	return p
}

// Validate checks the hyperparameters after defaulting.
func (p Params) Validate() error {
	if p.MaxDepth < 0 {
		return errors.NewValidationError("MaxDepth", "must be non-negative", p.MaxDepth)
	}
	if p.MinChildWeight < 0 {
		return errors.NewValidationError("MinChildWeight", "must be non-negative", p.MinChildWeight)
	}
	if p.MinImpurityDecrease < 0 {
		return errors.NewValidationError("MinImpurityDecrease", "must be non-negative", p.MinImpurityDecrease)
	}
	if p.FractionFeaturesInSplit < 0 || p.FractionFeaturesInSplit > 1 {
		return errors.NewValidationError("FractionFeaturesInSplit", "must be in (0, 1]", p.FractionFeaturesInSplit)
	}
	return nil
}

// LeafDeterminer carries the termination thresholds consulted while a
// node decides whether its children become leaves.
type LeafDeterminer struct {
	MaxDepth       int
	MinChildWeight float64
	// ScaledMinImpurityDecrease is MinImpurityDecrease multiplied by
	// the total dataset weight.
	ScaledMinImpurityDecrease float64
}

// ShouldMakeLeaf reports whether a child at depth+1 with the given
// impurity and weight must terminate.
func (d LeafDeterminer) ShouldMakeLeaf(depth int, impurity, weightSum float64) bool {
	return impurity == 0.0 || depth+1 >= d.MaxDepth || weightSum < d.MinChildWeight
}

// TrainingNode is a mutable node of a growing tree. Expand attempts to
// split the node over the candidate features, returning the children
// that still need expansion (children forced into leaves are not
// returned). Convert freezes the subtree into its immutable form.
type TrainingNode interface {
	Depth() int
	WeightSum() float64
	Impurity() float64
	Expand(featureIDs []int, r *rng.Splittable, useRandomSplitPoints bool) []TrainingNode
	Convert() Node
}

// TrainerCore holds the state shared by the concrete trainers: the
// validated hyperparameters and the invocation-counted root RNG.
type TrainerCore struct {
	params Params

	mu              sync.Mutex
	root            *rng.Splittable
	invocationCount int
}

// NewTrainerCore validates the parameters and seeds the root RNG.
func NewTrainerCore(p Params) (*TrainerCore, error) {
	p = p.withDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &TrainerCore{params: p, root: rng.New(p.Seed)}, nil
}

// Params returns the defaulted hyperparameters.
func (c *TrainerCore) Params() Params { return c.params }

// ForkRNG splits a fresh stream off the root RNG and increments the
// invocation counter. Each training run consumes exactly one fork, so
// the counter identifies the run's position in the fork order.
func (c *TrainerCore) ForkRNG() (*rng.Splittable, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	forked := c.root.Split()
	c.invocationCount++
	return forked, c.invocationCount
}

// InvocationCount returns the number of completed training runs.
func (c *TrainerCore) InvocationCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invocationCount
}

// SetInvocationCount rewinds or fast-forwards the RNG to the state it
// would hold after count training runs, by replaying the fork sequence
// from the seed.
func (c *TrainerCore) SetInvocationCount(count int) error {
	if count < 0 {
		return errors.NewValidationError("count", "must be non-negative", count)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.root = rng.New(c.params.Seed)
	for i := 0; i < count; i++ {
		c.root.Split()
	}
	c.invocationCount = count
	return nil
}

// Grow runs the work-list growth loop from root. Nodes are expanded
// depth first; a node is expanded only while it is impure, above the
// minimum weight and short of the depth limit. numFeatures is the size
// of the feature domain; r drives feature subsampling and random split
// points.
func Grow(root TrainingNode, p Params, numFeatures int, r *rng.Splittable) {
	numInSplit := int(math.Round(p.FractionFeaturesInSplit * float64(numFeatures)))
	if numInSplit > numFeatures {
		numInSplit = numFeatures
	}

	originalIndices := make([]int, numFeatures)
	for i := range originalIndices {
		originalIndices[i] = i
	}
	indices := originalIndices
	if numInSplit != numFeatures {
		indices = make([]int, numInSplit)
	}

	logger := log.GetLogger().With(log.ComponentKey, "tree.Grow")
	expanded := 0

	// The work list is a stack, growing the tree depth first.
	stack := []TrainingNode{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node.Impurity() > 0.0 && node.Depth() < p.MaxDepth && node.WeightSum() >= p.MinChildWeight {
			if numInSplit != numFeatures {
				r.Perm(originalIndices)
				copy(indices, originalIndices[:numInSplit])
			}
			stack = append(stack, node.Expand(indices, r, p.UseRandomSplitPoints)...)
			expanded++
		}
	}

	logger.Debug("tree growth finished", log.NodesKey, expanded)
}
