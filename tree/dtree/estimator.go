package dtree

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/gocart-ml/gocart/core/model"
	"github.com/gocart-ml/gocart/dataset"
	"github.com/gocart-ml/gocart/pkg/errors"
	"github.com/gocart-ml/gocart/tree"
)

// CARTClassifier is a matrix-oriented front end over Trainer. Feature
// columns are named feature_0..feature_{d-1} so the same column order
// must be used at fit and predict time.
type CARTClassifier struct {
	model.BaseEstimator

	Params   tree.Params
	Impurity LabelImpurity

	trained   *tree.Model
	nFeatures int
}

// NewCARTClassifier returns an unfitted classifier.
func NewCARTClassifier(p tree.Params, impurity LabelImpurity) *CARTClassifier {
	return &CARTClassifier{Params: p, Impurity: impurity}
}

// Fit trains a classification tree on the design matrix X with one
// class name per row.
func (c *CARTClassifier) Fit(X mat.Matrix, labels []string) error {
	r, cols := X.Dims()
	if r == 0 || cols == 0 {
		return errors.NewModelError("CARTClassifier.Fit", "empty data", errors.ErrEmptyData)
	}

	ds, err := dataset.FromClassificationMatrix(X, columnNames(cols), labels)
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
	c.SetFitted()
	return nil
}

// Predict returns the predicted class name for each row of X.
func (c *CARTClassifier) Predict(X mat.Matrix) ([]string, error) {
	preds, err := c.predictions(X, "Predict")
	if err != nil {
		return nil, err
	}
	out := make([]string, len(preds))
	for i, p := range preds {
		out[i] = p.Output.(dataset.Label).Name
	}
	return out, nil
}

// PredictProba returns the leaf class distribution for each row of X,
// keyed by class name.
func (c *CARTClassifier) PredictProba(X mat.Matrix) ([]map[string]float64, error) {
	preds, err := c.predictions(X, "PredictProba")
	if err != nil {
		return nil, err
	}
	out := make([]map[string]float64, len(preds))
	for i, p := range preds {
		out[i] = p.Distribution
	}
	return out, nil
}

// Model returns the fitted tree, or nil before Fit.
func (c *CARTClassifier) Model() *tree.Model { return c.trained }

func (c *CARTClassifier) predictions(X mat.Matrix, method string) ([]*tree.Prediction, error) {
	if !c.IsFitted() {
		return nil, errors.NewNotFittedError("CARTClassifier", method)
	}
	r, cols := X.Dims()
	if cols != c.nFeatures {
		return nil, errors.NewDimensionError("CARTClassifier."+method, c.nFeatures, cols, 1)
	}

	names := columnNames(cols)
	out := make([]*tree.Prediction, r)
	for i := 0; i < r; i++ {
		features := make([]dataset.Feature, 0, cols)
		for j := 0; j < cols; j++ {
			features = append(features, dataset.Feature{Name: names[j], Value: X.At(i, j)})
		}
		pred, err := c.trained.Predict(dataset.NewExample(features, nil))
		if err != nil {
			return nil, err
		}
		out[i] = pred
	}
	return out, nil
}

func columnNames(d int) []string {
	names := make([]string, d)
	for j := range names {
		names[j] = fmt.Sprintf("feature_%d", j)
	}
	return names
}
