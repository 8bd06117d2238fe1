package tree

import (
	"encoding/json"
	"io"
	"os"

	"github.com/gocart-ml/gocart/dataset"
	"github.com/gocart-ml/gocart/pkg/errors"
)

type modelJSON struct {
	Name          string   `json:"name"`
	FormatVersion string   `json:"format_version"`
	Features      []string `json:"features"`
	Labels        []string `json:"labels,omitempty"`
	Dimensions    []string `json:"dimensions,omitempty"`
	Nodes         []Record `json:"nodes"`
}

// Export writes the model as JSON: the feature and output domains plus
// the flattened node records.
func (m *Model) Export(w io.Writer) error {
	doc := modelJSON{
		Name:          m.name,
		FormatVersion: "1.0",
		Features:      m.featureMap.Names(),
		Nodes:         Flatten(m.root),
	}
	switch info := m.outputInfo.(type) {
	case *dataset.LabelInfo:
		doc.Labels = info.Labels()
	case *dataset.RegressionInfo:
		doc.Dimensions = info.Dimensions()
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(&doc); err != nil {
		return errors.Wrap(err, "Export")
	}
	return nil
}

// ExportToFile writes the model as JSON to the given path.
func (m *Model) ExportToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "ExportToFile")
	}
	defer f.Close()
	return m.Export(f)
}

// Import reads a model previously written by Export, validating the
// node records while rebuilding the tree.
func Import(r io.Reader) (*Model, error) {
	var doc modelJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrapf(errors.ErrCorruptModel, "decode: %v", err)
	}

	fm, err := dataset.NewFeatureMap(doc.Features)
	if err != nil {
		return nil, err
	}
	var info dataset.OutputInfo
	switch {
	case len(doc.Labels) > 0:
		info, err = dataset.NewLabelInfo(doc.Labels)
	case len(doc.Dimensions) > 0:
		info, err = dataset.NewRegressionInfo(doc.Dimensions)
	default:
		return nil, errors.Wrap(errors.ErrCorruptModel, "no output domain")
	}
	if err != nil {
		return nil, err
	}

	root, err := Build(doc.Nodes)
	if err != nil {
		return nil, err
	}
	return NewModel(doc.Name, fm, info, root), nil
}

// ImportFromFile reads a model from a JSON file written by
// ExportToFile.
func ImportFromFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "ImportFromFile")
	}
	defer f.Close()
	return Import(f)
}
