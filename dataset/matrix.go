package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/gocart-ml/gocart/pkg/errors"
)

// FromRegressionMatrix builds a regression dataset from a dense design
// matrix. X is n×d with column j holding feature featureNames[j]; y is
// n×k with column j holding dimension dimNames[j]. Explicit zeros in X
// are dropped, preserving the sparse absent-means-zero semantics.
func FromRegressionMatrix(X mat.Matrix, featureNames []string, y mat.Matrix, dimNames []string) (*Dataset, error) {
	n, d := X.Dims()
	ny, k := y.Dims()
	if d != len(featureNames) {
		return nil, errors.NewDimensionError("FromRegressionMatrix", len(featureNames), d, 1)
	}
	if ny != n {
		return nil, errors.NewDimensionError("FromRegressionMatrix", n, ny, 0)
	}
	if k != len(dimNames) {
		return nil, errors.NewDimensionError("FromRegressionMatrix", len(dimNames), k, 1)
	}

	fm, err := NewFeatureMap(featureNames)
	if err != nil {
		return nil, err
	}
	info, err := NewRegressionInfo(dimNames)
	if err != nil {
		return nil, err
	}

	ds := New(fm, info)
	for i := 0; i < n; i++ {
		features := rowFeatures(X, i, featureNames)
		values := make([]float64, k)
		for j := 0; j < k; j++ {
			values[j] = y.At(i, j)
		}
		out := Regressor{Names: append([]string(nil), dimNames...), Values: values}
		ds.Add(NewExample(features, out))
	}
	return ds, nil
}

// FromClassificationMatrix builds a classification dataset from a dense
// design matrix and per-row class names. The label domain is inferred
// from the distinct values of labels.
func FromClassificationMatrix(X mat.Matrix, featureNames []string, labels []string) (*Dataset, error) {
	n, d := X.Dims()
	if d != len(featureNames) {
		return nil, errors.NewDimensionError("FromClassificationMatrix", len(featureNames), d, 1)
	}
	if len(labels) != n {
		return nil, errors.NewDimensionError("FromClassificationMatrix", n, len(labels), 0)
	}

	fm, err := NewFeatureMap(featureNames)
	if err != nil {
		return nil, err
	}
	distinct := make(map[string]bool, len(labels))
	domain := make([]string, 0, len(labels))
	for _, l := range labels {
		if !distinct[l] {
			distinct[l] = true
			domain = append(domain, l)
		}
	}
	info, err := NewLabelInfo(domain)
	if err != nil {
		return nil, err
	}

	ds := New(fm, info)
	for i := 0; i < n; i++ {
		ds.Add(NewExample(rowFeatures(X, i, featureNames), NewLabel(labels[i])))
	}
	return ds, nil
}

func rowFeatures(X mat.Matrix, i int, featureNames []string) []Feature {
	_, d := X.Dims()
	features := make([]Feature, 0, d)
	for j := 0; j < d; j++ {
		v := X.At(i, j)
		if v == 0 {
			continue
		}
		features = append(features, Feature{Name: featureNames[j], Value: v})
	}
	return features
}
