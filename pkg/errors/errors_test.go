package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFittedError(t *testing.T) {
	err := NewNotFittedError("Trainer", "Predict")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not fitted")
	assert.Contains(t, err.Error(), "Trainer")

	var nfe *NotFittedError
	assert.True(t, As(err, &nfe))
	assert.Equal(t, "Predict", nfe.Method)
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("fractionFeaturesInSplit", "must be in (0, 1]", 1.5)
	assert.Contains(t, err.Error(), "fractionFeaturesInSplit")
	assert.Contains(t, err.Error(), "1.5")

	var ve *ValidationError
	assert.True(t, As(err, &ve))
	assert.Equal(t, "fractionFeaturesInSplit", ve.ParamName)
}

func TestDimensionError(t *testing.T) {
	err := NewDimensionError("Train", 4, 3, 1)
	assert.Contains(t, err.Error(), "Expected 4, got 3")

	var de *DimensionError
	assert.True(t, As(err, &de))
	assert.Equal(t, 1, de.Axis)
}

func TestModelErrorUnwrap(t *testing.T) {
	err := NewModelError("Deserialize", "empty node list", ErrCorruptModel)
	assert.True(t, Is(err, ErrCorruptModel))
}

func TestWrapPreservesSentinel(t *testing.T) {
	err := Wrap(ErrEmptyData, "loading training set")
	assert.True(t, Is(err, ErrEmptyData))
	assert.Contains(t, err.Error(), "loading training set")
}
