package dataset

import (
	"sort"

	"github.com/gocart-ml/gocart/pkg/errors"
)

// Output is a supervised learning target: a Label for classification or
// a Regressor for regression.
type Output interface {
	isOutput()
}

// Label is a classification output. Score carries the predicted
// probability when produced by a model; it is ignored on training
// examples.
type Label struct {
	Name  string
	Score float64
}

func (Label) isOutput() {}

// NewLabel returns a Label with an unset score.
func NewLabel(name string) Label {
	return Label{Name: name}
}

// Regressor is a (possibly multi-dimensional) regression output.
// Values[i] is the value of dimension Names[i]. Variances is optional
// and only populated on model predictions.
type Regressor struct {
	Names     []string
	Values    []float64
	Variances []float64
}

func (Regressor) isOutput() {}

// NewRegressor returns a single-dimension Regressor.
func NewRegressor(name string, value float64) Regressor {
	return Regressor{Names: []string{name}, Values: []float64{value}}
}

// Value returns the value for the named dimension.
func (r Regressor) Value(name string) (float64, bool) {
	for i, n := range r.Names {
		if n == name {
			return r.Values[i], true
		}
	}
	return 0, false
}

// OutputInfo is an immutable output domain, built upstream of training.
type OutputInfo interface {
	// Size is the number of classes or output dimensions.
	Size() int
	// Contains reports whether the output belongs to this domain.
	Contains(o Output) bool
}

// LabelInfo is the immutable domain of a classification problem.
// Label ids are assigned in lexicographic name order.
type LabelInfo struct {
	labels []string
	ids    map[string]int
}

// NewLabelInfo builds a label domain from the given class names.
func NewLabelInfo(labels []string) (*LabelInfo, error) {
	if len(labels) == 0 {
		return nil, errors.NewValueError("NewLabelInfo", "at least one label is required")
	}
	sorted := append([]string(nil), labels...)
	sort.Strings(sorted)
	ids := make(map[string]int, len(sorted))
	for i, l := range sorted {
		if _, ok := ids[l]; ok {
			return nil, errors.NewValueError("NewLabelInfo", "duplicate label "+l)
		}
		ids[l] = i
	}
	return &LabelInfo{labels: sorted, ids: ids}, nil
}

// Size returns the number of classes.
func (info *LabelInfo) Size() int { return len(info.labels) }

// Contains reports whether o is a Label in this domain.
func (info *LabelInfo) Contains(o Output) bool {
	l, ok := o.(Label)
	if !ok {
		return false
	}
	_, ok = info.ids[l.Name]
	return ok
}

// ID returns the id of the given label name.
func (info *LabelInfo) ID(name string) (int, bool) {
	id, ok := info.ids[name]
	return id, ok
}

// Label returns the name of the label with the given id.
func (info *LabelInfo) Label(id int) string { return info.labels[id] }

// Labels returns the class names in id order.
func (info *LabelInfo) Labels() []string {
	return append([]string(nil), info.labels...)
}

// RegressionInfo is the immutable domain of a regression problem.
// Dimension ids are assigned in lexicographic name order.
type RegressionInfo struct {
	dims []string
	ids  map[string]int
}

// NewRegressionInfo builds a regression domain from dimension names.
func NewRegressionInfo(dims []string) (*RegressionInfo, error) {
	if len(dims) == 0 {
		return nil, errors.NewValueError("NewRegressionInfo", "at least one dimension is required")
	}
	sorted := append([]string(nil), dims...)
	sort.Strings(sorted)
	ids := make(map[string]int, len(sorted))
	for i, d := range sorted {
		if _, ok := ids[d]; ok {
			return nil, errors.NewValueError("NewRegressionInfo", "duplicate dimension "+d)
		}
		ids[d] = i
	}
	return &RegressionInfo{dims: sorted, ids: ids}, nil
}

// Size returns the number of output dimensions.
func (info *RegressionInfo) Size() int { return len(info.dims) }

// Contains reports whether o is a Regressor covering every dimension of
// this domain.
func (info *RegressionInfo) Contains(o Output) bool {
	r, ok := o.(Regressor)
	if !ok {
		return false
	}
	if len(r.Names) != len(info.dims) {
		return false
	}
	for _, n := range r.Names {
		if _, ok := info.ids[n]; !ok {
			return false
		}
	}
	return true
}

// ID returns the id of the given dimension name.
func (info *RegressionInfo) ID(name string) (int, bool) {
	id, ok := info.ids[name]
	return id, ok
}

// Dimension returns the name of the dimension with the given id.
func (info *RegressionInfo) Dimension(id int) string { return info.dims[id] }

// Dimensions returns the dimension names in id order.
func (info *RegressionInfo) Dimensions() []string {
	return append([]string(nil), info.dims...)
}
