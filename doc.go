// Package gocart implements CART-style binary decision trees for
// classification and regression over sparse, weighted tabular data.
//
// The induction engine builds one inverted index per training call
// (per-feature value-sorted example lists), reuses it for every split
// search at every node, and grows trees under depth, child-weight and
// impurity-decrease constraints. Feature subsampling and random split
// points are available for ensemble use, and a joint multi-output
// variant optimizes a single tree across all output dimensions.
//
// Entry points:
//   - tree/dtree: classification trainers (Gini index, entropy)
//   - tree/rtree: regression trainers (MSE, MAE), independent and joint
//     multi-output modes
//   - tree: the immutable model, prediction, feature importance and
//     node-record serialization
//
// Training is deterministic: a fixed seed and dataset reproduce a
// bit-identical tree, regardless of the degree of parallelism used for
// independent multi-output training.
package gocart
