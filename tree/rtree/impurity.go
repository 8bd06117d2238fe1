// Package rtree trains CART regression trees: single-output trees, the
// independent multi-output trainer which grows one tree per output
// dimension, and the joint trainer which grows a single tree over all
// dimensions at once.
package rtree

import (
	"math"
	"sort"
)

// RegressorImpurity measures the impurity of a set of regression
// targets, addressed as index lists into shared target/weight arrays.
type RegressorImpurity interface {
	// Impurity returns the impurity of the targets at the given
	// indices.
	Impurity(indices []int, targets, weights []float64) float64
	// ImpurityLists returns the impurity over the union of the index
	// lists together with the union's total weight.
	ImpurityLists(lists [][]int, targets, weights []float64) (impurity, weight float64)

	Name() string
}

// MeanSquaredError is the weighted variance of the targets. It
// accumulates running moments, so scoring a candidate split is linear
// in the number of examples with no extra allocation.
type MeanSquaredError struct{}

// Impurity implements RegressorImpurity.
func (MeanSquaredError) Impurity(indices []int, targets, weights []float64) float64 {
	imp, _ := mseOver([][]int{indices}, targets, weights)
	return imp
}

// ImpurityLists implements RegressorImpurity.
func (MeanSquaredError) ImpurityLists(lists [][]int, targets, weights []float64) (float64, float64) {
	return mseOver(lists, targets, weights)
}

// Name implements RegressorImpurity.
func (MeanSquaredError) Name() string { return "mse" }

func mseOver(lists [][]int, targets, weights []float64) (float64, float64) {
	sum := 0.0
	squaredSum := 0.0
	weightSum := 0.0
	for _, indices := range lists {
		for _, idx := range indices {
			v := targets[idx]
			w := weights[idx]
			sum += v * w
			squaredSum += v * v * w
			weightSum += w
		}
	}
	if weightSum == 0 {
		return 0, 0
	}
	mean := sum / weightSum
	return squaredSum/weightSum - mean*mean, weightSum
}

// MeanAbsoluteError is the weighted mean absolute deviation from the
// weighted median of the targets. Medians admit no bounded running
// statistic, so each evaluation gathers and sorts the target values.
type MeanAbsoluteError struct{}

// Impurity implements RegressorImpurity.
func (MeanAbsoluteError) Impurity(indices []int, targets, weights []float64) float64 {
	imp, _ := maeOver([][]int{indices}, targets, weights)
	return imp
}

// ImpurityLists implements RegressorImpurity.
func (MeanAbsoluteError) ImpurityLists(lists [][]int, targets, weights []float64) (float64, float64) {
	return maeOver(lists, targets, weights)
}

// Name implements RegressorImpurity.
func (MeanAbsoluteError) Name() string { return "mae" }

func maeOver(lists [][]int, targets, weights []float64) (float64, float64) {
	type pair struct {
		value  float64
		weight float64
	}
	var pairs []pair
	weightSum := 0.0
	for _, indices := range lists {
		for _, idx := range indices {
			pairs = append(pairs, pair{value: targets[idx], weight: weights[idx]})
			weightSum += weights[idx]
		}
	}
	if weightSum == 0 {
		return 0, 0
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].value < pairs[j].value })

	// Weighted median: the smallest value whose cumulative weight
	// reaches half the total.
	half := weightSum / 2
	cum := 0.0
	median := pairs[len(pairs)-1].value
	for _, p := range pairs {
		cum += p.weight
		if cum >= half {
			median = p.value
			break
		}
	}

	deviation := 0.0
	for _, p := range pairs {
		deviation += p.weight * math.Abs(p.value-median)
	}
	return deviation / weightSum, weightSum
}
