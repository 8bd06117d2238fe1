// Package tree contains the immutable decision-tree model shared by the
// classification and regression trainers, together with the training
// machinery common to both: the inverted feature index, the work-list
// growth controller and the node-record serialization format.
package tree

import (
	"github.com/gocart-ml/gocart/dataset"
)

// Node is one node of a finalized tree: either a *SplitNode or a
// *LeafNode. Nodes are immutable after construction and safe for
// concurrent reads.
type Node interface {
	// IsLeaf reports whether this node is a leaf.
	IsLeaf() bool
	// Impurity returns the impurity of the examples that reached this
	// node during training.
	Impurity() float64

	next(vec dataset.SparseVector) Node
}

// SplitNode routes an example left (less than or equal) or right
// (greater) by comparing one feature value against a threshold.
// A feature absent from the example reads as zero.
type SplitNode struct {
	feature     int
	threshold   float64
	impurity    float64
	lessOrEqual Node
	greater     Node
}

// NewSplitNode constructs a split node over the given children.
func NewSplitNode(feature int, threshold, impurity float64, lessOrEqual, greater Node) *SplitNode {
	return &SplitNode{
		feature:     feature,
		threshold:   threshold,
		impurity:    impurity,
		lessOrEqual: lessOrEqual,
		greater:     greater,
	}
}

// IsLeaf returns false.
func (n *SplitNode) IsLeaf() bool { return false }

// Impurity returns the node impurity at training time.
func (n *SplitNode) Impurity() float64 { return n.impurity }

// Feature returns the id of the split feature.
func (n *SplitNode) Feature() int { return n.feature }

// Threshold returns the split threshold.
func (n *SplitNode) Threshold() float64 { return n.threshold }

// LessOrEqual returns the child taken when the feature value is <= the
// threshold.
func (n *SplitNode) LessOrEqual() Node { return n.lessOrEqual }

// Greater returns the child taken when the feature value is > the
// threshold.
func (n *SplitNode) Greater() Node { return n.greater }

func (n *SplitNode) next(vec dataset.SparseVector) Node {
	if vec.Get(n.feature) > n.threshold {
		return n.greater
	}
	return n.lessOrEqual
}

// LeafNode holds the aggregated output estimate for the examples routed
// to it, together with their total weight.
type LeafNode struct {
	impurity     float64
	output       dataset.Output
	distribution map[string]float64
	weightSum    float64
}

// NewLeafNode constructs a leaf. distribution may be nil for outputs
// without per-class scores.
func NewLeafNode(impurity float64, output dataset.Output, distribution map[string]float64, weightSum float64) *LeafNode {
	return &LeafNode{
		impurity:     impurity,
		output:       output,
		distribution: distribution,
		weightSum:    weightSum,
	}
}

// IsLeaf returns true.
func (n *LeafNode) IsLeaf() bool { return true }

// Impurity returns the leaf impurity at training time.
func (n *LeafNode) Impurity() float64 { return n.impurity }

// Output returns the leaf's output estimate.
func (n *LeafNode) Output() dataset.Output { return n.output }

// Distribution returns the per-class score distribution, or nil.
func (n *LeafNode) Distribution() map[string]float64 { return n.distribution }

// WeightSum returns the total weight of the training examples routed to
// this leaf.
func (n *LeafNode) WeightSum() float64 { return n.weightSum }

func (n *LeafNode) next(vec dataset.SparseVector) Node { return nil }

// Traverse routes a sparse vector from root to the leaf it lands in.
func Traverse(root Node, vec dataset.SparseVector) *LeafNode {
	cur := root
	for {
		next := cur.next(vec)
		if next == nil {
			return cur.(*LeafNode)
		}
		cur = next
	}
}

// Depth returns the number of splits on the longest root-to-leaf path.
func Depth(root Node) int {
	if root == nil || root.IsLeaf() {
		return 0
	}
	split := root.(*SplitNode)
	left := Depth(split.lessOrEqual)
	right := Depth(split.greater)
	if left > right {
		return 1 + left
	}
	return 1 + right
}

// CountNodes returns the total number of nodes in the tree.
func CountNodes(root Node) int {
	if root == nil {
		return 0
	}
	if root.IsLeaf() {
		return 1
	}
	split := root.(*SplitNode)
	return 1 + CountNodes(split.lessOrEqual) + CountNodes(split.greater)
}
