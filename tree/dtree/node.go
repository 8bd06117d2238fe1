package dtree

import (
	"github.com/gocart-ml/gocart/dataset"
	"github.com/gocart-ml/gocart/pkg/rng"
	"github.com/gocart-ml/gocart/tree"
)

// trainingNode is a classification node of the growing tree. It keeps
// the weighted label histogram of its examples so boundary scans can
// update both sides of a candidate split incrementally.
type trainingNode struct {
	tree.NodeBase

	impurity  LabelImpurity
	labelInfo *dataset.LabelInfo

	data    []*tree.TreeFeature
	indices []int
	labels  []int
	weights []float64

	weightedCounts []float64
	weightSum      float64
	impurityScore  float64
}

func newRootNode(inv *tree.InvertedData, labelInfo *dataset.LabelInfo, impurity LabelImpurity, determiner tree.LeafDeterminer) *trainingNode {
	counts := make([]float64, labelInfo.Size())
	weightSum := 0.0
	for i, label := range inv.Labels {
		counts[label] += inv.Weights[i]
		weightSum += inv.Weights[i]
	}
	return &trainingNode{
		NodeBase:       tree.NodeBase{NumExamples: len(inv.Labels), Determiner: determiner},
		impurity:       impurity,
		labelInfo:      labelInfo,
		data:           inv.Features,
		indices:        inv.Indices,
		labels:         inv.Labels,
		weights:        inv.Weights,
		weightedCounts: counts,
		weightSum:      weightSum,
		impurityScore:  impurity.Impurity(counts),
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

// expandGreedy scans every boundary between adjacent observed values of
// every candidate feature, keeping the first strictly best partition.
func (n *trainingNode) expandGreedy(featureIDs []int) []tree.TrainingNode {
	numLabels := len(n.weightedCounts)
	bestID := -1
	bestScore := n.impurityScore
	bestSplitValue := 0.0
	bestLess := make([]float64, numLabels)
	bestGreater := make([]float64, numLabels)
	less := make([]float64, numLabels)
	greater := make([]float64, numLabels)
	scratch := make([]float64, numLabels)

	for i, fid := range featureIDs {
		groups := n.data[fid].Groups()
		zeroCounts(less)
		copy(greater, n.weightedCounts)
		for j := 0; j < len(groups)-1; j++ {
			n.groupCounts(groups[j], scratch)
			for k := range scratch {
				less[k] += scratch[k]
				greater[k] -= scratch[k]
			}
			score := (n.impurity.ImpurityWeighted(less) + n.impurity.ImpurityWeighted(greater)) / n.weightSum
			if score < bestScore {
				bestID = i
				bestScore = score
				bestSplitValue = (groups[j].Value + groups[j+1].Value) / 2.0
				copy(bestLess, less)
				copy(bestGreater, greater)
			}
		}
	}

	out := n.acceptSplit(featureIDs, bestID, bestScore, bestSplitValue, bestLess, bestGreater)
	n.data = nil
	return out
}

// expandRandom scores one uniformly chosen boundary per candidate
// feature. Features with a single observed value cannot be split and
// are skipped.
func (n *trainingNode) expandRandom(featureIDs []int, r *rng.Splittable) []tree.TrainingNode {
	numLabels := len(n.weightedCounts)
	bestID := -1
	bestScore := n.impurityScore
	bestSplitValue := 0.0
	bestLess := make([]float64, numLabels)
	bestGreater := make([]float64, numLabels)
	less := make([]float64, numLabels)
	greater := make([]float64, numLabels)
	scratch := make([]float64, numLabels)

	for i, fid := range featureIDs {
		groups := n.data[fid].Groups()
		if len(groups) == 1 {
			continue
		}
		zeroCounts(less)
		copy(greater, n.weightedCounts)

		splitIdx := r.Int(len(groups) - 1)
		for j := 0; j < splitIdx+1; j++ {
			n.groupCounts(groups[j], scratch)
			for k := range scratch {
				less[k] += scratch[k]
				greater[k] -= scratch[k]
			}
		}
		score := (n.impurity.ImpurityWeighted(less) + n.impurity.ImpurityWeighted(greater)) / n.weightSum
		if score < bestScore {
			bestID = i
			bestScore = score
			bestSplitValue = (groups[splitIdx].Value + groups[splitIdx+1].Value) / 2.0
			copy(bestLess, less)
			copy(bestGreater, greater)
		}
	}

	out := n.acceptSplit(featureIDs, bestID, bestScore, bestSplitValue, bestLess, bestGreater)
	n.data = nil
	return out
}

// acceptSplit applies the minimum impurity decrease gate and, when the
// split survives, partitions the node.
func (n *trainingNode) acceptSplit(featureIDs []int, bestID int, bestScore, bestSplitValue float64, lessCounts, greaterCounts []float64) []tree.TrainingNode {
	impurityDecrease := n.weightSum * (n.impurityScore - bestScore)
	if bestID == -1 || impurityDecrease < n.Determiner.ScaledMinImpurityDecrease {
		return nil
	}
	return n.splitAtBest(featureIDs[bestID], bestSplitValue, lessCounts, greaterCounts)
}

func (n *trainingNode) splitAtBest(splitID int, splitValue float64, lessCounts, greaterCounts []float64) []tree.TrainingNode {
	lessWeight := sumCounts(lessCounts)
	lessImpurity := n.impurity.Impurity(lessCounts)
	greaterWeight := sumCounts(greaterCounts)
	greaterImpurity := n.impurity.Impurity(greaterCounts)

	makeLessLeaf := n.Determiner.ShouldMakeLeaf(n.NodeDepth, lessImpurity, lessWeight)
	makeGreaterLeaf := n.Determiner.ShouldMakeLeaf(n.NodeDepth, greaterImpurity, greaterWeight)

	if makeLessLeaf && makeGreaterLeaf {
		n.SetSplit(splitID, splitValue,
			tree.LeafChild(n.makeLeaf(lessImpurity, lessCounts)),
			tree.LeafChild(n.makeLeaf(greaterImpurity, greaterCounts)))
		return nil
	}

	var leftLists [][]int
	for _, g := range n.data[splitID].Groups() {
		if g.Value < splitValue {
			leftLists = append(leftLists, g.Indices())
		} else {
			break
		}
	}
	leftIndices := tree.MergeIndices(leftLists)
	rightIndices := tree.RemoveOther(n.indices, leftIndices)
	leftData, rightData := tree.SplitFeatures(n.data, leftIndices, rightIndices)

	var out []tree.TrainingNode
	var lessChild, greaterChild tree.ChildRef

	if makeLessLeaf {
		lessChild = tree.LeafChild(n.makeLeaf(lessImpurity, lessCounts))
	} else {
		child := n.childNode(leftData, leftIndices, lessCounts, lessWeight, lessImpurity)
		lessChild = tree.TrainingChild(child)
		out = append(out, child)
	}

	if makeGreaterLeaf {
		greaterChild = tree.LeafChild(n.makeLeaf(greaterImpurity, greaterCounts))
	} else {
		child := n.childNode(rightData, rightIndices, greaterCounts, greaterWeight, greaterImpurity)
		greaterChild = tree.TrainingChild(child)
		out = append(out, child)
	}

	n.SetSplit(splitID, splitValue, lessChild, greaterChild)
	return out
}

func (n *trainingNode) childNode(data []*tree.TreeFeature, indices []int, counts []float64, weightSum, impurityScore float64) *trainingNode {
	childCounts := make([]float64, len(counts))
	copy(childCounts, counts)
	return &trainingNode{
		NodeBase:       tree.NodeBase{NodeDepth: n.NodeDepth + 1, NumExamples: len(indices), Determiner: n.Determiner},
		impurity:       n.impurity,
		labelInfo:      n.labelInfo,
		data:           data,
		indices:        indices,
		labels:         n.labels,
		weights:        n.weights,
		weightedCounts: childCounts,
		weightSum:      weightSum,
		impurityScore:  impurityScore,
	}
}

// Convert implements tree.TrainingNode.
func (n *trainingNode) Convert() tree.Node {
	if n.DidSplit {
		return n.ConvertSplit(n.impurityScore)
	}
	return n.makeLeaf(n.impurityScore, n.weightedCounts)
}

// makeLeaf normalizes the histogram into a distribution and picks the
// highest scoring label, ties going to the lowest label id.
func (n *trainingNode) makeLeaf(impurityScore float64, counts []float64) *tree.LeafNode {
	sum := sumCounts(counts)
	distribution := make(map[string]float64, len(counts))
	best := dataset.Label{Score: -1}
	weightSum := 0.0
	for i, c := range counts {
		score := 0.0
		if sum > 0 {
			score = c / sum
		}
		name := n.labelInfo.Label(i)
		distribution[name] = score
		if score > best.Score {
			best = dataset.Label{Name: name, Score: score}
		}
		weightSum += c
	}
	return tree.NewLeafNode(impurityScore, best, distribution, weightSum)
}

// groupCounts accumulates the weighted label histogram of one value
// group into out.
func (n *trainingNode) groupCounts(g *tree.InvertedFeature, out []float64) {
	zeroCounts(out)
	for _, idx := range g.Indices() {
		out[n.labels[idx]] += n.weights[idx]
	}
}

func zeroCounts(c []float64) {
	for i := range c {
		c[i] = 0
	}
}

func sumCounts(c []float64) float64 {
	sum := 0.0
	for _, v := range c {
		sum += v
	}
	return sum
}
