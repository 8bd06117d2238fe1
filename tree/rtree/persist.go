package rtree

import (
	"encoding/json"
	"io"
	"os"

	"github.com/gocart-ml/gocart/dataset"
	"github.com/gocart-ml/gocart/pkg/errors"
	"github.com/gocart-ml/gocart/tree"
)

type independentModelJSON struct {
	Name          string                   `json:"name"`
	FormatVersion string                   `json:"format_version"`
	Features      []string                 `json:"features"`
	Dimensions    []string                 `json:"dimensions"`
	Trees         map[string][]tree.Record `json:"trees"`
}

// Export writes the model as JSON: the feature and output domains plus
// one flattened record list per dimension.
func (m *IndependentModel) Export(w io.Writer) error {
	doc := independentModelJSON{
		Name:          m.name,
		FormatVersion: "1.0",
		Features:      m.featureMap.Names(),
		Dimensions:    m.info.Dimensions(),
		Trees:         m.Flatten(),
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(&doc); err != nil {
		return errors.Wrap(err, "Export")
	}
	return nil
}

// ExportToFile writes the model as JSON to the given path.
func (m *IndependentModel) ExportToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "ExportToFile")
	}
	defer f.Close()
	return m.Export(f)
}

// Import reads a model previously written by Export. The tree count
// must match the dimension count exactly.
func Import(r io.Reader) (*IndependentModel, error) {
	var doc independentModelJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrapf(errors.ErrCorruptModel, "decode: %v", err)
	}

	fm, err := dataset.NewFeatureMap(doc.Features)
	if err != nil {
		return nil, err
	}
	info, err := dataset.NewRegressionInfo(doc.Dimensions)
	if err != nil {
		return nil, err
	}
	return BuildIndependentModel(doc.Name, fm, info, doc.Trees)
}

// ImportFromFile reads a model from a JSON file written by
// ExportToFile.
func ImportFromFile(path string) (*IndependentModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "ImportFromFile")
	}
	defer f.Close()
	return Import(f)
}
