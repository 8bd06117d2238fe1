package tree

import (
	"github.com/gocart-ml/gocart/dataset"
	"github.com/gocart-ml/gocart/pkg/errors"
)

// Record is one node of a flattened tree. Trees flatten to a preorder
// list where split records reference their children by absolute list
// position; child positions always exceed the parent's, which is what
// lets Build reconstruct the tree in a single backwards pass.
type Record struct {
	Leaf     bool    `json:"leaf"`
	Impurity float64 `json:"impurity"`

	// Split fields.
	Feature     int     `json:"feature,omitempty"`
	Threshold   float64 `json:"threshold,omitempty"`
	LessOrEqual int     `json:"less_or_equal,omitempty"`
	Greater     int     `json:"greater,omitempty"`

	// Leaf fields.
	WeightSum    float64            `json:"weight_sum,omitempty"`
	Label        string             `json:"label,omitempty"`
	Distribution map[string]float64 `json:"distribution,omitempty"`
	Dimensions   []string           `json:"dimensions,omitempty"`
	Values       []float64          `json:"values,omitempty"`
	Variances    []float64          `json:"variances,omitempty"`
}

// Flatten serializes a tree into its preorder record list.
func Flatten(root Node) []Record {
	var records []Record
	flattenNode(root, &records)
	return records
}

func flattenNode(n Node, records *[]Record) int {
	pos := len(*records)
	*records = append(*records, Record{})

	if n.IsLeaf() {
		leaf := n.(*LeafNode)
		rec := Record{
			Leaf:         true,
			Impurity:     leaf.Impurity(),
			WeightSum:    leaf.WeightSum(),
			Distribution: leaf.Distribution(),
		}
		switch out := leaf.Output().(type) {
		case dataset.Label:
			rec.Label = out.Name
		case dataset.Regressor:
			rec.Dimensions = out.Names
			rec.Values = out.Values
			rec.Variances = out.Variances
		}
		(*records)[pos] = rec
		return pos
	}

	split := n.(*SplitNode)
	less := flattenNode(split.LessOrEqual(), records)
	greater := flattenNode(split.Greater(), records)
	(*records)[pos] = Record{
		Impurity:    split.Impurity(),
		Feature:     split.Feature(),
		Threshold:   split.Threshold(),
		LessOrEqual: less,
		Greater:     greater,
	}
	return pos
}

// Build reconstructs a tree from its preorder record list. It rejects
// empty lists and records whose child references do not point strictly
// forwards within the list.
func Build(records []Record) (Node, error) {
	if len(records) == 0 {
		return nil, errors.Wrap(errors.ErrCorruptModel, "empty node list")
	}

	nodes := make([]Node, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		if rec.Leaf {
			nodes[i] = buildLeaf(rec)
			continue
		}
		if rec.LessOrEqual <= i || rec.LessOrEqual >= len(records) {
			return nil, errors.Wrapf(errors.ErrCorruptModel, "node %d has invalid child offset %d", i, rec.LessOrEqual)
		}
		if rec.Greater <= i || rec.Greater >= len(records) {
			return nil, errors.Wrapf(errors.ErrCorruptModel, "node %d has invalid child offset %d", i, rec.Greater)
		}
		nodes[i] = NewSplitNode(rec.Feature, rec.Threshold, rec.Impurity, nodes[rec.LessOrEqual], nodes[rec.Greater])
	}
	return nodes[0], nil
}

func buildLeaf(rec Record) *LeafNode {
	var output dataset.Output
	if rec.Label != "" {
		output = dataset.Label{Name: rec.Label, Score: rec.Distribution[rec.Label]}
	} else {
		output = dataset.Regressor{
			Names:     rec.Dimensions,
			Values:    rec.Values,
			Variances: rec.Variances,
		}
	}
	return NewLeafNode(rec.Impurity, output, rec.Distribution, rec.WeightSum)
}
