package rtree

import (
	"github.com/gocart-ml/gocart/dataset"
	"github.com/gocart-ml/gocart/pkg/rng"
	"github.com/gocart-ml/gocart/tree"
)

// trainingNode is a single-dimension regression node of a growing tree.
// It addresses targets and weights through the index lists held by the
// inverted feature data, which is shared read-only between nodes and,
// in independent mode, between dimensions.
type trainingNode struct {
	tree.NodeBase

	impurity RegressorImpurity
	dimName  string

	data    []*tree.TreeFeature
	indices []int
	targets []float64
	weights []float64

	weightSum     float64
	impurityScore float64
}

func newRootNode(inv *tree.InvertedData, dimID int, dimName string, impurity RegressorImpurity, determiner tree.LeafDeterminer) *trainingNode {
	targets := inv.Targets[dimID]
	weightSum := sumWeights(inv.Indices, inv.Weights)
	return &trainingNode{
		NodeBase:      tree.NodeBase{NumExamples: len(inv.Indices), Determiner: determiner},
		impurity:      impurity,
		dimName:       dimName,
		data:          inv.Features,
		indices:       inv.Indices,
		targets:       targets,
		weights:       inv.Weights,
		weightSum:     weightSum,
		impurityScore: impurity.Impurity(inv.Indices, targets, inv.Weights),
	}
}

func (n *trainingNode) WeightSum() float64 { return n.weightSum }
func (n *trainingNode) Impurity() float64  { return n.impurityScore }

// Expand implements tree.TrainingNode.
func (n *trainingNode) Expand(featureIDs []int, r *rng.Splittable, useRandomSplitPoints bool) []tree.TrainingNode {
	if useRandomSplitPoints {
		return n.expandRandom(featureIDs, r)
	}
	return n.expandGreedy(featureIDs)
}

func (n *trainingNode) expandGreedy(featureIDs []int) []tree.TrainingNode {
	bestID := -1
	bestScore := n.impurityScore
	bestSplitValue := 0.0
	var bestLeft, bestRight [][]int
	var curIndices [][]int

	for i, fid := range featureIDs {
		groups := n.data[fid].Groups()
		curIndices = curIndices[:0]
		for _, g := range groups {
			curIndices = append(curIndices, g.Indices())
		}

		for j := 0; j < len(groups)-1; j++ {
			left := curIndices[:j+1]
			right := curIndices[j+1:]
			lessImp, lessWeight := n.impurity.ImpurityLists(left, n.targets, n.weights)
			greaterImp, greaterWeight := n.impurity.ImpurityLists(right, n.targets, n.weights)
			score := (lessImp*lessWeight + greaterImp*greaterWeight) / n.weightSum
			if score < bestScore {
				bestID = i
				bestScore = score
				bestSplitValue = (groups[j].Value + groups[j+1].Value) / 2.0
				bestLeft = append(bestLeft[:0], left...)
				bestRight = append(bestRight[:0], right...)
			}
		}
	}

	out := n.acceptSplit(featureIDs, bestID, bestScore, bestSplitValue, bestLeft, bestRight)
	n.data = nil
	return out
}

func (n *trainingNode) expandRandom(featureIDs []int, r *rng.Splittable) []tree.TrainingNode {
	bestID := -1
	bestScore := n.impurityScore
	bestSplitValue := 0.0
	var bestLeft, bestRight [][]int
	var left, right [][]int

	for i, fid := range featureIDs {
		groups := n.data[fid].Groups()
		if len(groups) == 1 {
			continue
		}

		splitIdx := r.Int(len(groups) - 1)
		left = left[:0]
		right = right[:0]
		for j := 0; j < splitIdx+1; j++ {
			left = append(left, groups[j].Indices())
		}
		for j := splitIdx + 1; j < len(groups); j++ {
			right = append(right, groups[j].Indices())
		}

		lessImp, lessWeight := n.impurity.ImpurityLists(left, n.targets, n.weights)
		greaterImp, greaterWeight := n.impurity.ImpurityLists(right, n.targets, n.weights)
		score := (lessImp*lessWeight + greaterImp*greaterWeight) / n.weightSum
		if score < bestScore {
			bestID = i
			bestScore = score
			bestSplitValue = (groups[splitIdx].Value + groups[splitIdx+1].Value) / 2.0
			bestLeft = append(bestLeft[:0], left...)
			bestRight = append(bestRight[:0], right...)
		}
	}

	out := n.acceptSplit(featureIDs, bestID, bestScore, bestSplitValue, bestLeft, bestRight)
	n.data = nil
	return out
}

func (n *trainingNode) acceptSplit(featureIDs []int, bestID int, bestScore, bestSplitValue float64, bestLeft, bestRight [][]int) []tree.TrainingNode {
	impurityDecrease := n.weightSum * (n.impurityScore - bestScore)
	if bestID == -1 || impurityDecrease < n.Determiner.ScaledMinImpurityDecrease {
		return nil
	}
	return n.splitAtBest(featureIDs[bestID], bestSplitValue, bestLeft, bestRight)
}

func (n *trainingNode) splitAtBest(splitID int, splitValue float64, bestLeft, bestRight [][]int) []tree.TrainingNode {
	leftIndices := tree.MergeIndices(bestLeft)
	rightIndices := tree.MergeIndices(bestRight)

	leftWeight := sumWeights(leftIndices, n.weights)
	leftImpurity := n.impurity.Impurity(leftIndices, n.targets, n.weights)
	rightWeight := sumWeights(rightIndices, n.weights)
	rightImpurity := n.impurity.Impurity(rightIndices, n.targets, n.weights)

	makeLeftLeaf := n.Determiner.ShouldMakeLeaf(n.NodeDepth, leftImpurity, leftWeight)
	makeRightLeaf := n.Determiner.ShouldMakeLeaf(n.NodeDepth, rightImpurity, rightWeight)

	if makeLeftLeaf && makeRightLeaf {
		n.SetSplit(splitID, splitValue,
			tree.LeafChild(n.makeLeaf(leftImpurity, leftIndices)),
			tree.LeafChild(n.makeLeaf(rightImpurity, rightIndices)))
		return nil
	}

	leftData, rightData := tree.SplitFeatures(n.data, leftIndices, rightIndices)

	var out []tree.TrainingNode
	var lessChild, greaterChild tree.ChildRef

	if makeLeftLeaf {
		lessChild = tree.LeafChild(n.makeLeaf(leftImpurity, leftIndices))
	} else {
		child := n.childNode(leftData, leftIndices, leftWeight, leftImpurity)
		lessChild = tree.TrainingChild(child)
		out = append(out, child)
	}

	if makeRightLeaf {
		greaterChild = tree.LeafChild(n.makeLeaf(rightImpurity, rightIndices))
	} else {
		child := n.childNode(rightData, rightIndices, rightWeight, rightImpurity)
		greaterChild = tree.TrainingChild(child)
		out = append(out, child)
	}

	n.SetSplit(splitID, splitValue, lessChild, greaterChild)
	return out
}

func (n *trainingNode) childNode(data []*tree.TreeFeature, indices []int, weightSum, impurityScore float64) *trainingNode {
	return &trainingNode{
		NodeBase:      tree.NodeBase{NodeDepth: n.NodeDepth + 1, NumExamples: len(indices), Determiner: n.Determiner},
		impurity:      n.impurity,
		dimName:       n.dimName,
		data:          data,
		indices:       indices,
		targets:       n.targets,
		weights:       n.weights,
		weightSum:     weightSum,
		impurityScore: impurityScore,
	}
}

// Convert implements tree.TrainingNode.
func (n *trainingNode) Convert() tree.Node {
	if n.DidSplit {
		return n.ConvertSplit(n.impurityScore)
	}
	return n.makeLeaf(n.impurityScore, n.indices)
}

// makeLeaf aggregates the leaf examples into a weighted mean and an
// unbiased weighted variance for this node's dimension.
func (n *trainingNode) makeLeaf(impurityScore float64, leafIndices []int) *tree.LeafNode {
	mean, variance, leafWeightSum := weightedMoments(leafIndices, n.targets, n.weights)
	output := dataset.Regressor{
		Names:     []string{n.dimName},
		Values:    []float64{mean},
		Variances: []float64{variance},
	}
	return tree.NewLeafNode(impurityScore, output, nil, leafWeightSum)
}

// weightedMoments computes the weighted mean and variance of the
// targets at the given indices with a single streaming pass.
func weightedMoments(indices []int, targets, weights []float64) (mean, variance, weightSum float64) {
	for _, idx := range indices {
		value := targets[idx]
		weight := weights[idx]
		weightSum += weight
		oldMean := mean
		mean += (weight / weightSum) * (value - oldMean)
		variance += weight * (value - oldMean) * (value - mean)
	}
	if len(indices) > 1 {
		variance /= weightSum - 1
	} else {
		variance = 0
	}
	return mean, variance, weightSum
}

func sumWeights(indices []int, weights []float64) float64 {
	sum := 0.0
	for _, idx := range indices {
		sum += weights[idx]
	}
	return sum
}
