// Package model holds estimator plumbing shared by all trainers and
// fitted models.
package model

// EstimatorState tracks whether an estimator has been fitted.
type EstimatorState int

const (
	// NotFitted means the estimator has not been trained.
	NotFitted EstimatorState = iota
	// Fitted means the estimator holds a trained model.
	Fitted
)

// BaseEstimator is embedded by models to provide fitted-state tracking.
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted reports whether the estimator has been fitted.
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted marks the estimator as fitted.
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset returns the estimator to its unfitted state.
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}
