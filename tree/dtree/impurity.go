// Package dtree trains CART classification trees. Splits are chosen by
// greedily scanning the boundaries between adjacent observed feature
// values, scoring each candidate partition with a label impurity
// measure over weighted class histograms.
package dtree

import "math"

// LabelImpurity measures the impurity of a weighted label histogram.
// Implementations must return zero for a histogram concentrated on a
// single class.
type LabelImpurity interface {
	// Impurity returns the impurity of the histogram.
	Impurity(counts []float64) float64
	// ImpurityWeighted returns the impurity scaled by the histogram's
	// total weight, so that the two sides of a candidate split can be
	// summed and divided by the parent weight to form a weighted
	// average.
	ImpurityWeighted(counts []float64) float64

	Name() string
}

// GiniIndex is the Gini impurity: 1 minus the sum of squared class
// probabilities.
type GiniIndex struct{}

// Impurity implements LabelImpurity.
func (GiniIndex) Impurity(counts []float64) float64 {
	sum := 0.0
	for _, c := range counts {
		sum += c
	}
	if sum == 0 {
		return 0
	}
	score := 0.0
	for _, c := range counts {
		frac := c / sum
		score += frac * frac
	}
	return 1.0 - score
}

// ImpurityWeighted implements LabelImpurity.
func (g GiniIndex) ImpurityWeighted(counts []float64) float64 {
	sum := 0.0
	for _, c := range counts {
		sum += c
	}
	if sum == 0 {
		return 0
	}
	score := 0.0
	for _, c := range counts {
		frac := c / sum
		score += frac * frac
	}
	return (1.0 - score) * sum
}

// Name implements LabelImpurity.
func (GiniIndex) Name() string { return "gini" }

// Entropy is the Shannon entropy of the class distribution in nats.
// Zero counts contribute nothing.
type Entropy struct{}

// Impurity implements LabelImpurity.
func (Entropy) Impurity(counts []float64) float64 {
	sum := 0.0
	for _, c := range counts {
		sum += c
	}
	if sum == 0 {
		return 0
	}
	score := 0.0
	for _, c := range counts {
		if c > 0 {
			frac := c / sum
			score -= frac * math.Log(frac)
		}
	}
	return score
}

// ImpurityWeighted implements LabelImpurity.
func (Entropy) ImpurityWeighted(counts []float64) float64 {
	sum := 0.0
	for _, c := range counts {
		sum += c
	}
	if sum == 0 {
		return 0
	}
	score := 0.0
	for _, c := range counts {
		if c > 0 {
			score -= c * math.Log(c/sum)
		}
	}
	return score
}

// Name implements LabelImpurity.
func (Entropy) Name() string { return "entropy" }
