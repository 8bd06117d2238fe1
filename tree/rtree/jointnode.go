package rtree

import (
	"github.com/gocart-ml/gocart/dataset"
	"github.com/gocart-ml/gocart/pkg/rng"
	"github.com/gocart-ml/gocart/tree"
)

// jointTrainingNode grows a single tree over every output dimension at
// once, scoring splits by the impurity averaged across dimensions.
type jointTrainingNode struct {
	tree.NodeBase

	impurity  RegressorImpurity
	info      *dataset.RegressionInfo
	normalize bool

	data    []*tree.TreeFeature
	indices []int
	targets [][]float64
	weights []float64

	weightSum     float64
	impurityScore float64
}

func newJointRootNode(inv *tree.InvertedData, info *dataset.RegressionInfo, impurity RegressorImpurity, normalize bool, determiner tree.LeafDeterminer) *jointTrainingNode {
	n := &jointTrainingNode{
		NodeBase:  tree.NodeBase{NumExamples: len(inv.Indices), Determiner: determiner},
		impurity:  impurity,
		info:      info,
		normalize: normalize,
		data:      inv.Features,
		indices:   inv.Indices,
		targets:   inv.Targets,
		weights:   inv.Weights,
		weightSum: sumWeights(inv.Indices, inv.Weights),
	}
	n.impurityScore = n.calcImpurity(inv.Indices)
	return n
}

func (n *jointTrainingNode) WeightSum() float64 { return n.weightSum }
func (n *jointTrainingNode) Impurity() float64  { return n.impurityScore }

// calcImpurity averages the per-dimension impurity over the indices.
func (n *jointTrainingNode) calcImpurity(indices []int) float64 {
	sum := 0.0
	for d := range n.targets {
		sum += n.impurity.Impurity(indices, n.targets[d], n.weights)
	}
	return sum / float64(len(n.targets))
}

// Expand implements tree.TrainingNode.
func (n *jointTrainingNode) Expand(featureIDs []int, r *rng.Splittable, useRandomSplitPoints bool) []tree.TrainingNode {
	if useRandomSplitPoints {
		return n.expandRandom(featureIDs, r)
	}
	return n.expandGreedy(featureIDs)
}

func (n *jointTrainingNode) expandGreedy(featureIDs []int) []tree.TrainingNode {
	bestID := -1
	bestScore := n.impurityScore
	bestSplitValue := 0.0
	var bestLeft, bestRight [][]int
	var curIndices [][]int

	numDims := float64(len(n.targets))
	for i, fid := range featureIDs {
		groups := n.data[fid].Groups()
		curIndices = curIndices[:0]
		for _, g := range groups {
			curIndices = append(curIndices, g.Indices())
		}

		for j := 0; j < len(groups)-1; j++ {
			left := curIndices[:j+1]
			right := curIndices[j+1:]
			lessScore := 0.0
			greaterScore := 0.0
			for d := range n.targets {
				lessImp, lessWeight := n.impurity.ImpurityLists(left, n.targets[d], n.weights)
				lessScore += lessImp * lessWeight
				greaterImp, greaterWeight := n.impurity.ImpurityLists(right, n.targets[d], n.weights)
				greaterScore += greaterImp * greaterWeight
			}
			score := (lessScore + greaterScore) / (numDims * n.weightSum)
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

func (n *jointTrainingNode) expandRandom(featureIDs []int, r *rng.Splittable) []tree.TrainingNode {
	bestID := -1
	bestScore := n.impurityScore
	bestSplitValue := 0.0
	var bestLeft, bestRight [][]int
	var left, right [][]int

	numDims := float64(len(n.targets))
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

		lessScore := 0.0
		greaterScore := 0.0
		for d := range n.targets {
			lessImp, lessWeight := n.impurity.ImpurityLists(left, n.targets[d], n.weights)
			lessScore += lessImp * lessWeight
			greaterImp, greaterWeight := n.impurity.ImpurityLists(right, n.targets[d], n.weights)
			greaterScore += greaterImp * greaterWeight
		}
		score := (lessScore + greaterScore) / (numDims * n.weightSum)
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

func (n *jointTrainingNode) acceptSplit(featureIDs []int, bestID int, bestScore, bestSplitValue float64, bestLeft, bestRight [][]int) []tree.TrainingNode {
	impurityDecrease := n.weightSum * (n.impurityScore - bestScore)
	if bestID == -1 || impurityDecrease < n.Determiner.ScaledMinImpurityDecrease {
		return nil
	}
	return n.splitAtBest(featureIDs[bestID], bestSplitValue, bestLeft, bestRight)
}

func (n *jointTrainingNode) splitAtBest(splitID int, splitValue float64, bestLeft, bestRight [][]int) []tree.TrainingNode {
	leftIndices := tree.MergeIndices(bestLeft)
	rightIndices := tree.MergeIndices(bestRight)

	leftWeight := sumWeights(leftIndices, n.weights)
	leftImpurity := n.calcImpurity(leftIndices)
	rightWeight := sumWeights(rightIndices, n.weights)
	rightImpurity := n.calcImpurity(rightIndices)

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

func (n *jointTrainingNode) childNode(data []*tree.TreeFeature, indices []int, weightSum, impurityScore float64) *jointTrainingNode {
	return &jointTrainingNode{
		NodeBase:      tree.NodeBase{NodeDepth: n.NodeDepth + 1, NumExamples: len(indices), Determiner: n.Determiner},
		impurity:      n.impurity,
		info:          n.info,
		normalize:     n.normalize,
		data:          data,
		indices:       indices,
		targets:       n.targets,
		weights:       n.weights,
		weightSum:     weightSum,
		impurityScore: impurityScore,
	}
}

// Convert implements tree.TrainingNode.
func (n *jointTrainingNode) Convert() tree.Node {
	if n.DidSplit {
		return n.ConvertSplit(n.impurityScore)
	}
	return n.makeLeaf(n.impurityScore, n.indices)
}

// makeLeaf aggregates per-dimension weighted means (and variances when
// not normalizing). With normalization the mean vector is rescaled to
// sum to one and variances are omitted.
func (n *jointTrainingNode) makeLeaf(impurityScore float64, leafIndices []int) *tree.LeafNode {
	numDims := len(n.targets)
	names := n.info.Dimensions()
	means := make([]float64, numDims)
	leafWeightSum := 0.0

	var output dataset.Regressor
	if n.normalize {
		for _, idx := range leafIndices {
			weight := n.weights[idx]
			leafWeightSum += weight
			for d := 0; d < numDims; d++ {
				value := n.targets[d][idx]
				oldMean := means[d]
				means[d] += (weight / leafWeightSum) * (value - oldMean)
			}
		}
		sum := 0.0
		for d := 0; d < numDims; d++ {
			sum += means[d]
		}
		for d := 0; d < numDims; d++ {
			means[d] /= sum
		}
		output = dataset.Regressor{Names: names, Values: means}
	} else {
		variances := make([]float64, numDims)
		for _, idx := range leafIndices {
			weight := n.weights[idx]
			leafWeightSum += weight
			for d := 0; d < numDims; d++ {
				value := n.targets[d][idx]
				oldMean := means[d]
				means[d] += (weight / leafWeightSum) * (value - oldMean)
				variances[d] += weight * (value - oldMean) * (value - means[d])
			}
		}
		for d := 0; d < numDims; d++ {
			if len(leafIndices) > 1 {
				variances[d] /= leafWeightSum - 1
			} else {
				variances[d] = 0
			}
		}
		output = dataset.Regressor{Names: names, Values: means, Variances: variances}
	}
	return tree.NewLeafNode(impurityScore, output, nil, leafWeightSum)
}
