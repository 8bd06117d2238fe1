package tree

// ChildRef points at a node's child during growth, which is either an
// already-finalized leaf or a training node still to be converted.
type ChildRef struct {
	leaf     Node
	training TrainingNode
}

// LeafChild wraps a finalized leaf.
func LeafChild(leaf Node) ChildRef { return ChildRef{leaf: leaf} }

// TrainingChild wraps a training node.
func TrainingChild(n TrainingNode) ChildRef { return ChildRef{training: n} }

// Convert finalizes the child.
func (c ChildRef) Convert() Node {
	if c.leaf != nil {
		return c.leaf
	}
	return c.training.Convert()
}

// NodeBase carries the state every concrete training node shares: its
// position in the growing tree, the termination thresholds and the
// split chosen for it, if any.
type NodeBase struct {
	NodeDepth   int
	NumExamples int
	Determiner  LeafDeterminer

	// Split state, populated when a split is accepted.
	DidSplit    bool
	SplitID     int
	SplitValue  float64
	LessOrEqual ChildRef
	Greater     ChildRef
}

// Depth returns the node's depth, with the root at zero.
func (b *NodeBase) Depth() int { return b.NodeDepth }

// SetSplit records an accepted split and its children.
func (b *NodeBase) SetSplit(featureID int, threshold float64, lessOrEqual, greater ChildRef) {
	b.DidSplit = true
	b.SplitID = featureID
	b.SplitValue = threshold
	b.LessOrEqual = lessOrEqual
	b.Greater = greater
}

// ConvertSplit freezes the split recorded on this node, converting both
// children. impurity is the node's own training impurity.
func (b *NodeBase) ConvertSplit(impurity float64) Node {
	return NewSplitNode(b.SplitID, b.SplitValue, impurity, b.LessOrEqual.Convert(), b.Greater.Convert())
}
