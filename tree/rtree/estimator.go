package rtree

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/gocart-ml/gocart/core/model"
	"github.com/gocart-ml/gocart/dataset"
	"github.com/gocart-ml/gocart/pkg/errors"
	"github.com/gocart-ml/gocart/tree"
)

// CARTRegressor is a matrix-oriented front end over the independent
// regression trainer. Feature columns are named
// feature_0..feature_{d-1} and output columns output_0..output_{k-1},
// so the same column order must be used at fit and predict time.
type CARTRegressor struct {
	model.BaseEstimator

	Params   tree.Params
	Impurity RegressorImpurity

	trained   *IndependentModel
	nFeatures int
	nOutputs  int
}

// NewCARTRegressor returns an unfitted regressor.
func NewCARTRegressor(p tree.Params, impurity RegressorImpurity) *CARTRegressor {
	return &CARTRegressor{Params: p, Impurity: impurity}
}

// Fit trains one tree per column of y on the design matrix X.
func (c *CARTRegressor) Fit(X, y mat.Matrix) error {
	r, cols := X.Dims()
	if r == 0 || cols == 0 {
		return errors.NewModelError("CARTRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	_, k := y.Dims()

	ds, err := dataset.FromRegressionMatrix(X, featureColumnNames(cols), y, outputColumnNames(k))
	if err != nil {
		return err
	}
	trainer, err := NewTrainer(c.Params, c.Impurity)
	if err != nil {
		return err
	}
	trained, err := trainer.Train(ds)
	if err != nil {
		return err
	}

	c.trained = trained
	c.nFeatures = cols
	c.nOutputs = k
	c.SetFitted()
	return nil
}

// Predict returns an n by k matrix of predicted outputs for X.
func (c *CARTRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !c.IsFitted() {
		return nil, errors.NewNotFittedError("CARTRegressor", "Predict")
	}
	r, cols := X.Dims()
	if cols != c.nFeatures {
		return nil, errors.NewDimensionError("CARTRegressor.Predict", c.nFeatures, cols, 1)
	}

	featureNames := featureColumnNames(cols)
	outputNames := outputColumnNames(c.nOutputs)
	out := mat.NewDense(r, c.nOutputs, nil)
	for i := 0; i < r; i++ {
		features := make([]dataset.Feature, 0, cols)
		for j := 0; j < cols; j++ {
			features = append(features, dataset.Feature{Name: featureNames[j], Value: X.At(i, j)})
		}
		pred, err := c.trained.Predict(dataset.NewExample(features, nil))
		if err != nil {
			return nil, err
		}
		reg := pred.Output.(dataset.Regressor)
		for j, name := range outputNames {
			v, _ := reg.Value(name)
			out.Set(i, j, v)
		}
	}
	return out, nil
}

// Model returns the fitted model, or nil before Fit.
func (c *CARTRegressor) Model() *IndependentModel { return c.trained }

func featureColumnNames(d int) []string {
	names := make([]string, d)
	for j := range names {
		names[j] = fmt.Sprintf("feature_%d", j)
	}
	return names
}

func outputColumnNames(k int) []string {
	names := make([]string, k)
	for j := range names {
		names[j] = fmt.Sprintf("output_%d", j)
	}
	return names
}
