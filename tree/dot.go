package tree

import (
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/gocart-ml/gocart/dataset"
	"github.com/gocart-ml/gocart/pkg/errors"
)

// DrawGraph renders the tree as a graphviz graph, split nodes as
// ellipses labelled with their test and leaves as boxes labelled with
// their output. The caller owns both returned values and must close
// them after rendering.
func (m *Model) DrawGraph() (*graphviz.Graphviz, *cgraph.Graph, error) {
	gv := graphviz.New()
	graph, err := gv.Graph()
	if err != nil {
		return nil, nil, errors.Wrap(err, "DrawGraph")
	}

	counter := 0
	if err := m.drawNode(graph, m.root, nil, &counter); err != nil {
		return nil, nil, err
	}
	return gv, graph, nil
}

// RenderSVG renders the tree to an SVG file at the given path.
func (m *Model) RenderSVG(path string) error {
	gv, graph, err := m.DrawGraph()
	if err != nil {
		return err
	}
	defer gv.Close()
	defer graph.Close()
	if err := gv.RenderFilename(graph, graphviz.SVG, path); err != nil {
		return errors.Wrap(err, "RenderSVG")
	}
	return nil
}

func (m *Model) drawNode(g *cgraph.Graph, n Node, parent *cgraph.Node, counter *int) error {
	current, err := g.CreateNode(fmt.Sprint(*counter))
	if err != nil {
		return errors.Wrap(err, "DrawGraph")
	}
	*counter++

	if parent != nil {
		if _, err := g.CreateEdge("", parent, current); err != nil {
			return errors.Wrap(err, "DrawGraph")
		}
	}

	if n.IsLeaf() {
		current.Set("label", leafLabel(n.(*LeafNode)))
		current.Set("shape", "box")
		return nil
	}

	split := n.(*SplitNode)
	current.Set("label", fmt.Sprintf("%s <= %.5f\nimpurity %.5f", m.featureMap.Name(split.Feature()), split.Threshold(), split.Impurity()))
	if err := m.drawNode(g, split.LessOrEqual(), current, counter); err != nil {
		return err
	}
	return m.drawNode(g, split.Greater(), current, counter)
}

func leafLabel(leaf *LeafNode) string {
	var sb strings.Builder
	switch out := leaf.Output().(type) {
	case dataset.Label:
		fmt.Fprintf(&sb, "%s (%.3f)\n", out.Name, out.Score)
	case dataset.Regressor:
		for i, name := range out.Names {
			fmt.Fprintf(&sb, "%s = %.5f\n", name, out.Values[i])
		}
	}
	fmt.Fprintf(&sb, "weight %.2f", leaf.WeightSum())
	return sb.String()
}
